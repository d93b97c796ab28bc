package utils

import (
	"math"

	"k8s.io/apimachinery/pkg/api/resource"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

// FormatBytes renders n as a binary-SI quantity such as "1536Mi" or "3Gi".
func FormatBytes(n uint64) string {
	if n > math.MaxInt64 {
		n = math.MaxInt64
	}
	return resource.NewQuantity(int64(n), resource.BinarySI).String()
}

// EqualSplit divides length into count integer pieces that differ by at most
// one and sum to length. Pieces alternate between floor and ceil.
func EqualSplit(length, count int) []int {
	pieces := make([]int, 0, max(count, 0))
	for count > 0 {
		i := int(math.Floor(float64(length) / float64(count)))
		pieces = append(pieces, i)
		length -= i
		count--

		if count < 1 {
			break
		}
		i = int(math.Ceil(float64(length) / float64(count)))
		pieces = append(pieces, i)
		length -= i
		count--
	}
	return pieces
}
