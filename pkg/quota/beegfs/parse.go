package beegfs

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/terminus-io/hccdu/pkg/quota"
)

const unlimited = "unlimited"

// ParseCSV decodes the first data row of `beegfs-ctl --getquota --csv`:
//
//	name,id,size,hard,files,hard
//	jdoe,1234,1073741824 Byte,10737418240 Byte,52,unlimited
//
// The header names "hard" twice; the first is the size limit, the second
// the file count limit.
func ParseCSV(out []byte, kind quota.Kind) (quota.Record, error) {
	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return quota.Record{}, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) < 2 {
		return quota.Record{}, fmt.Errorf("no quota row in output %q", strings.TrimSpace(string(out)))
	}

	header := rows[0]
	if len(header) > 3 {
		header[3] = "size_hard"
	}
	if len(header) > 5 {
		header[5] = "files_hard"
	}
	row := map[string]string{}
	for i, key := range header {
		if i < len(rows[1]) {
			row[strings.TrimSpace(key)] = strings.TrimSpace(rows[1][i])
		}
	}

	id, err := parseNumber(row, "id")
	if err != nil {
		return quota.Record{}, err
	}
	size, err := parseNumber(row, "size")
	if err != nil {
		return quota.Record{}, err
	}
	sizeHard, err := parseLimit(row, "size_hard")
	if err != nil {
		return quota.Record{}, err
	}
	files, err := parseNumber(row, "files")
	if err != nil {
		return quota.Record{}, err
	}
	filesHard, err := parseLimit(row, "files_hard")
	if err != nil {
		return quota.Record{}, err
	}

	// beegfs-ctl reports a single limit which acts as both soft and hard.
	return quota.Record{
		Kind:           kind,
		ID:             uint32(id),
		UsedBytes:      size,
		SoftLimitBytes: sizeHard,
		HardLimitBytes: sizeHard,
		UsedFiles:      files,
		SoftLimitFiles: filesHard,
		HardLimitFiles: filesHard,
	}, nil
}

// parseNumber reads the leading integer of a column such as "1024 Byte".
func parseNumber(row map[string]string, key string) (uint64, error) {
	v, ok := row[key]
	if !ok {
		return 0, fmt.Errorf("missing column %q", key)
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty column %q", key)
	}
	n, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", key, err)
	}
	return n, nil
}

func parseLimit(row map[string]string, key string) (uint64, error) {
	if strings.EqualFold(row[key], unlimited) {
		return 0, nil
	}
	return parseNumber(row, key)
}
