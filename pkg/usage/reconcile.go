package usage

import (
	"errors"
	"fmt"

	"github.com/terminus-io/hccdu/pkg/quota"
)

const (
	userUnique  = "user unique, see above"
	groupUnique = "group unique, see above"
)

// ErrInvalidSubjectIndex is returned when a supplementary group is addressed
// past the end of a non-empty quota list.
var ErrInvalidSubjectIndex = errors.New("subject index out of range of quota list")

// DiskStats is the reconciled usage of one subject on one mount. When
// Override is set the numeric fields are zero and must not be displayed.
type DiskStats struct {
	CurrentBytes uint64 `json:"current_bytes"`
	LimitBytes   uint64 `json:"limit_bytes"`
	CurrentFiles uint64 `json:"current_files"`
	LimitFiles   uint64 `json:"limit_files"`
	Override     string `json:"override,omitempty"`
}

func (d DiskStats) HasOverride() bool { return d.Override != "" }

// MinNotZero returns the smaller of a and b where 0 means "no bound".
func MinNotZero(a, b uint64) uint64 {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

// Untracked is the stats shown when nothing is known about subject on a mount.
func Untracked(s Subject) DiskStats {
	return DiskStats{Override: s.Label() + " disk usage not tracked"}
}

func filesystemStats(fs quota.FilesystemStat) DiskStats {
	return DiskStats{
		CurrentBytes: fs.UsedBytes(),
		LimitBytes:   fs.TotalBytes(),
		CurrentFiles: fs.UsedFiles(),
		LimitFiles:   fs.TotalFiles,
	}
}

// Reconcile computes the usage of subject on one mount from the adapter's
// quota list (possibly empty) and the mount's filesystem statistics. uid and
// gid are the caller's user and primary group.
func Reconcile(s Subject, list []quota.Record, fs quota.FilesystemStat, uid, gid uint32) (DiskStats, error) {
	switch s.Kind {
	case PrimaryUser, PrimaryGroup:
		if len(list) == 0 {
			return ownedFallback(s, fs, uid, gid), nil
		}
		if len(list) < 2 {
			return DiskStats{}, fmt.Errorf("%w: %s needs 2 records, have %d", ErrInvalidSubjectIndex, s, len(list))
		}
		return primaryStats(s, list, fs), nil

	case SupplementaryGroup:
		if len(list) == 0 {
			return Untracked(s), nil
		}
		pos := s.Position()
		if s.Index < 0 || pos >= len(list) {
			return DiskStats{}, fmt.Errorf("%w: %s with %d records", ErrInvalidSubjectIndex, s, len(list))
		}
		r := list[pos]
		return DiskStats{
			CurrentBytes: r.UsedBytes,
			LimitBytes:   MinNotZero(r.HardLimitBytes, fs.TotalBytes()),
			CurrentFiles: r.UsedFiles,
			LimitFiles:   MinNotZero(r.HardLimitFiles, fs.TotalFiles),
		}, nil

	case FilesystemWide:
		switch {
		case fs.OwnerUID == uid:
			return DiskStats{Override: userUnique}, nil
		case fs.OwnerGID == gid:
			return DiskStats{Override: groupUnique}, nil
		default:
			return filesystemStats(fs), nil
		}
	}
	return DiskStats{}, fmt.Errorf("unknown subject kind %d", s.Kind)
}

// primaryStats: the limit is whichever of user, group or filesystem bound
// the subject is likely to hit first.
func primaryStats(s Subject, list []quota.Record, fs quota.FilesystemStat) DiskStats {
	user, group := list[0], list[1]
	if s.Kind == PrimaryUser {
		return DiskStats{
			CurrentBytes: user.UsedBytes,
			LimitBytes:   MinNotZero(MinNotZero(user.HardLimitBytes, group.HardLimitBytes), fs.TotalBytes()),
			CurrentFiles: user.UsedFiles,
			LimitFiles:   MinNotZero(MinNotZero(user.HardLimitFiles, group.HardLimitFiles), fs.TotalFiles),
		}
	}
	return DiskStats{
		CurrentBytes: group.UsedBytes,
		LimitBytes:   MinNotZero(group.HardLimitBytes, fs.TotalBytes()),
		CurrentFiles: group.UsedFiles,
		LimitFiles:   MinNotZero(group.HardLimitFiles, fs.TotalFiles),
	}
}

// ownedFallback uses mount ownership to decide whether raw filesystem figures
// stand in for a backend that tracks no quota.
func ownedFallback(s Subject, fs quota.FilesystemStat, uid, gid uint32) DiskStats {
	switch {
	case fs.OwnerUID == uid:
		if s.Kind == PrimaryUser {
			return filesystemStats(fs)
		}
		return DiskStats{Override: userUnique}
	case fs.OwnerGID == gid:
		if s.Kind == PrimaryGroup {
			return filesystemStats(fs)
		}
		return Untracked(s)
	default:
		return Untracked(s)
	}
}
