package quota

import "fmt"

type Kind int

const (
	User Kind = iota
	Group
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is the usage and limits of one user or group on one mount.
// A limit of 0 means unlimited.
type Record struct {
	Kind Kind   `json:"kind"`
	ID   uint32 `json:"id"`

	UsedBytes      uint64 `json:"used_bytes"`
	SoftLimitBytes uint64 `json:"soft_limit_bytes"`
	HardLimitBytes uint64 `json:"hard_limit_bytes"`
	GraceSeconds   int64  `json:"grace_seconds,omitempty"`

	UsedFiles        uint64 `json:"used_files"`
	SoftLimitFiles   uint64 `json:"soft_limit_files"`
	HardLimitFiles   uint64 `json:"hard_limit_files"`
	FileGraceSeconds int64  `json:"file_grace_seconds,omitempty"`
}

// FilesystemStat is the statfs view of a mount point plus its ownership.
type FilesystemStat struct {
	BlockSize       uint64 `json:"block_size"`
	TotalBlocks     uint64 `json:"total_blocks"`
	AvailableBlocks uint64 `json:"available_blocks"`
	TotalFiles      uint64 `json:"total_files"`
	AvailableFiles  uint64 `json:"available_files"`
	OwnerUID        uint32 `json:"owner_uid"`
	OwnerGID        uint32 `json:"owner_gid"`
}

func (s FilesystemStat) TotalBytes() uint64 {
	return s.BlockSize * s.TotalBlocks
}

// UsedBytes counts blocks not available to unprivileged users as used.
func (s FilesystemStat) UsedBytes() uint64 {
	if s.AvailableBlocks > s.TotalBlocks {
		return 0
	}
	return s.BlockSize * (s.TotalBlocks - s.AvailableBlocks)
}

func (s FilesystemStat) UsedFiles() uint64 {
	if s.AvailableFiles > s.TotalFiles {
		return 0
	}
	return s.TotalFiles - s.AvailableFiles
}
