package threshold

import (
	"sort"
	"strings"
)

// Category is the subject class a warning is raised for.
type Category int

const (
	CategoryUser Category = iota
	CategoryGroup
	CategoryFilesystem
)

func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategoryGroup:
		return "group"
	default:
		return "filesystem"
	}
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

type Dimension int

const (
	Blocks Dimension = iota
	Inodes
)

func (d Dimension) String() string {
	if d == Inodes {
		return "inodes"
	}
	return "blocks"
}

func (d Dimension) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Key identifies one warning flag.
type Key struct {
	Mount     string    `json:"mount" yaml:"mount"`
	Category  Category  `json:"category" yaml:"category"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
}

func (k Key) String() string {
	return k.Mount + "/" + k.Category.String() + "/" + k.Dimension.String()
}

// WarningMask is the set of raised flags. The zero value is an empty mask
// ready for reading; use NewMask or Set to write.
type WarningMask map[Key]struct{}

func NewMask() WarningMask { return WarningMask{} }

func (m WarningMask) Set(k Key) { m[k] = struct{}{} }

func (m WarningMask) Has(k Key) bool {
	_, ok := m[k]
	return ok
}

func (m WarningMask) Any() bool { return len(m) > 0 }

// Merge returns the union of m and others.
func (m WarningMask) Merge(others ...WarningMask) WarningMask {
	out := make(WarningMask, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	for _, o := range others {
		for k := range o {
			out[k] = struct{}{}
		}
	}
	return out
}

// Match reports whether any flag satisfies every non-nil criterion.
func (m WarningMask) Match(mount *string, category *Category, dim *Dimension) bool {
	for k := range m {
		if mount != nil && k.Mount != *mount {
			continue
		}
		if category != nil && k.Category != *category {
			continue
		}
		if dim != nil && k.Dimension != *dim {
			continue
		}
		return true
	}
	return false
}

// HasCategory reports whether any flag was raised for c on any mount.
func (m WarningMask) HasCategory(c Category) bool { return m.Match(nil, &c, nil) }

// Keys returns the flags in a stable order.
func (m WarningMask) Keys() []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Mount != b.Mount {
			return a.Mount < b.Mount
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Dimension < b.Dimension
	})
	return keys
}

func (m WarningMask) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, ",")
}
