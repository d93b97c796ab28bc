package threshold

import (
	"github.com/terminus-io/hccdu/pkg/usage"
)

// Ratio holds the warning fractions for the two dimensions.
type Ratio struct {
	Blocks float64 `mapstructure:"blocks" yaml:"blocks" json:"blocks" validate:"gte=0,lte=1"`
	Inodes float64 `mapstructure:"inodes" yaml:"inodes" json:"inodes" validate:"gte=0,lte=1"`
}

// Config carries the warning ratios per category.
type Config struct {
	User       Ratio `mapstructure:"user" yaml:"user" json:"user"`
	Group      Ratio `mapstructure:"group" yaml:"group" json:"group"`
	Filesystem Ratio `mapstructure:"filesystem" yaml:"filesystem" json:"filesystem"`
}

func DefaultConfig() Config {
	return Config{
		User:       Ratio{Blocks: 0.75, Inodes: 0.75},
		Group:      Ratio{Blocks: 0.80, Inodes: 0.80},
		Filesystem: Ratio{Blocks: 0.85, Inodes: 0.85},
	}
}

func (c Config) For(cat Category) Ratio {
	switch cat {
	case CategoryUser:
		return c.User
	case CategoryGroup:
		return c.Group
	default:
		return c.Filesystem
	}
}

// CategoryOf maps a reconciliation subject to its warning category.
// Supplementary groups are judged like the primary group.
func CategoryOf(s usage.Subject) Category {
	switch s.Kind {
	case usage.PrimaryUser:
		return CategoryUser
	case usage.PrimaryGroup, usage.SupplementaryGroup:
		return CategoryGroup
	default:
		return CategoryFilesystem
	}
}

// Exceeds reports current/limit > ratio. A zero limit never exceeds.
func Exceeds(current, limit uint64, ratio float64) bool {
	if limit == 0 {
		return false
	}
	return float64(current)/float64(limit) > ratio
}

// Evaluate flags every mount and dimension of stats whose usage is above the
// category's ratio. Mounts are independent of each other.
func Evaluate(cat Category, stats map[string]usage.DiskStats, cfg Config) WarningMask {
	r := cfg.For(cat)
	mask := NewMask()
	for mount, ds := range stats {
		if Exceeds(ds.CurrentBytes, ds.LimitBytes, r.Blocks) {
			mask.Set(Key{Mount: mount, Category: cat, Dimension: Blocks})
		}
		if Exceeds(ds.CurrentFiles, ds.LimitFiles, r.Inodes) {
			mask.Set(Key{Mount: mount, Category: cat, Dimension: Inodes})
		}
	}
	return mask
}

// Code is the remediation category handed to a login-time check.
type Code int

const (
	NoAction       Code = 0
	BlocksExceeded Code = 1
	InodesExceeded Code = 2
	BothExceeded   Code = 3
)

func (c Code) String() string {
	switch c {
	case NoAction:
		return "none"
	case BlocksExceeded:
		return "blocks"
	case InodesExceeded:
		return "inodes"
	case BothExceeded:
		return "blocks+inodes"
	default:
		return "unknown"
	}
}

// Remediation derives the code from every flag raised on mount.
func Remediation(mask WarningMask, mount string) Code {
	b, i := Blocks, Inodes
	code := NoAction
	if mask.Match(&mount, nil, &b) {
		code |= BlocksExceeded
	}
	if mask.Match(&mount, nil, &i) {
		code |= InodesExceeded
	}
	return code
}
