package identity

import (
	"fmt"
	"os"
	"os/user"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// Identity is the calling user as seen by the quota backends.
type Identity struct {
	UID       uint32
	GID       uint32
	UserName  string
	GroupName string
	HomeDir   string
	// Supplementary gids, sorted, primary gid excluded.
	Supplementary []uint32
}

// Current resolves the identity of the running process. The effective uid is
// used for the user, the real gid for the primary group.
func Current() (Identity, error) {
	uid := uint32(os.Geteuid())
	gid := uint32(os.Getgid())

	groups, err := os.Getgroups()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to list supplementary groups: %w", err)
	}

	id := Identity{
		UID:           uid,
		GID:           gid,
		Supplementary: Supplementary(gid, lo.Map(groups, func(g int, _ int) uint32 { return uint32(g) })),
	}

	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return Identity{}, fmt.Errorf("failed to look up uid %d: %w", uid, err)
	}
	id.UserName = u.Username
	id.HomeDir = u.HomeDir
	id.GroupName = GroupName(gid)

	klog.V(4).InfoS("Resolved caller identity", "uid", id.UID, "gid", id.GID, "groups", id.Supplementary)
	return id, nil
}

// Supplementary returns groups sorted and deduplicated with primary removed.
func Supplementary(primary uint32, groups []uint32) []uint32 {
	out := lo.Without(lo.Uniq(groups), primary)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GroupName falls back to the numeric gid when the group database has no entry.
func GroupName(gid uint32) string {
	s := strconv.FormatUint(uint64(gid), 10)
	g, err := user.LookupGroupId(s)
	if err != nil {
		return s
	}
	return g.Name
}

// UserName falls back to the numeric uid when the passwd database has no entry.
func UserName(uid uint32) string {
	s := strconv.FormatUint(uint64(uid), 10)
	u, err := user.LookupId(s)
	if err != nil {
		return s
	}
	return u.Username
}

// PrimaryGroupOf returns the primary group name of uid, or "" when unknown.
func PrimaryGroupOf(uid uint32) string {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return ""
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return u.Gid
	}
	return GroupName(uint32(gid))
}
