package usage

import (
	"fmt"

	"github.com/terminus-io/hccdu/pkg/quota"
)

type SubjectKind int

const (
	PrimaryUser SubjectKind = iota
	PrimaryGroup
	SupplementaryGroup
	FilesystemWide
)

// Subject selects whose usage is reconciled. Index is only meaningful for
// SupplementaryGroup and counts supplementary groups from zero.
type Subject struct {
	Kind  SubjectKind
	Index int
}

func User() Subject               { return Subject{Kind: PrimaryUser} }
func Group() Subject              { return Subject{Kind: PrimaryGroup} }
func Filesystem() Subject         { return Subject{Kind: FilesystemWide} }
func Supplementary(i int) Subject { return Subject{Kind: SupplementaryGroup, Index: i} }

// Position is the offset of the subject's record in an adapter list.
func (s Subject) Position() int {
	switch s.Kind {
	case PrimaryUser:
		return 0
	case PrimaryGroup:
		return 1
	case SupplementaryGroup:
		return 2 + s.Index
	default:
		return -1
	}
}

// Label is the human description used in headers and override texts.
func (s Subject) Label() string {
	switch s.Kind {
	case PrimaryUser:
		return "user"
	case PrimaryGroup:
		return "primary group"
	case SupplementaryGroup:
		return "supplementary group"
	default:
		return "filesystem"
	}
}

func (s Subject) String() string {
	if s.Kind == SupplementaryGroup {
		return fmt.Sprintf("supplementary[%d]", s.Index)
	}
	return s.Label()
}

// SupplementaryIndex finds the supplementary group gid in list and returns
// the subject addressing it.
func SupplementaryIndex(list []quota.Record, gid uint32) (Subject, bool) {
	for i := 2; i < len(list); i++ {
		if list[i].Kind == quota.Group && list[i].ID == gid {
			return Supplementary(i - 2), true
		}
	}
	return Subject{}, false
}
