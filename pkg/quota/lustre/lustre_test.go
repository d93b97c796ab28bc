package lustre

import (
	"context"
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
)

func TestIfQuotactlLayout(t *testing.T) {
	var q ifQuotactl
	assert.Equal(t, uintptr(176), unsafe.Sizeof(q))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(q.Info))
	assert.Equal(t, uintptr(48), unsafe.Offsetof(q.Blk))
	assert.Equal(t, uintptr(120), unsafe.Offsetof(q.Obd))
}

func TestRecordConvertsBlockLimits(t *testing.T) {
	q := getQuotaRequest(quota.Group, 100)
	assert.Equal(t, uint32(lustreQGetQuota), q.Cmd)
	assert.Equal(t, uint32(grpQuota), q.Type)

	q.Blk.BHardLimit = 2048
	q.Blk.BSoftLimit = 1024
	q.Blk.CurSpace = 5000
	q.Blk.IHardLimit = 10
	q.Blk.CurInodes = 3

	r := q.record()
	assert.Equal(t, quota.Group, r.Kind)
	assert.Equal(t, uint32(100), r.ID)
	assert.Equal(t, uint64(2048*1024), r.HardLimitBytes)
	assert.Equal(t, uint64(1024*1024), r.SoftLimitBytes)
	assert.Equal(t, uint64(5000), r.UsedBytes)
	assert.Equal(t, uint64(10), r.HardLimitFiles)
	assert.Equal(t, uint64(3), r.UsedFiles)
}

func TestFetchOrder(t *testing.T) {
	var seen []uint32
	c := NewClient(true)
	c.quotactl = func(_ int, q *ifQuotactl) error {
		seen = append(seen, q.ID)
		q.Blk.CurSpace = uint64(q.ID)
		return nil
	}

	id := identity.Identity{UID: 1234, GID: 100, Supplementary: []uint32{200, 300}}
	got, err := c.Fetch(context.Background(), t.TempDir(), id)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1234, 100, 200, 300}, seen)
	require.Len(t, got, 4)
	assert.Equal(t, quota.User, got[0].Kind)
	assert.Equal(t, quota.Group, got[1].Kind)
	assert.Equal(t, uint64(300), got[3].UsedBytes)

	seen = nil
	c.Supplementary = false
	got, err = c.Fetch(context.Background(), t.TempDir(), id)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchSkipsFailingSupplementaryGroup(t *testing.T) {
	c := NewClient(true)
	c.quotactl = func(_ int, q *ifQuotactl) error {
		if q.Type == grpQuota && q.ID == 300 {
			return unix.EACCES
		}
		q.Blk.CurSpace = uint64(q.ID)
		return nil
	}

	id := identity.Identity{UID: 1234, GID: 100, Supplementary: []uint32{200, 300, 400}}
	got, err := c.Fetch(context.Background(), t.TempDir(), id)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []uint32{1234, 100, 200, 400}, []uint32{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestFetchFailsOnPrimaryGroup(t *testing.T) {
	c := NewClient(true)
	c.quotactl = func(_ int, q *ifQuotactl) error {
		if q.Type == grpQuota && q.ID == 100 {
			return unix.EACCES
		}
		return nil
	}

	id := identity.Identity{UID: 1234, GID: 100, Supplementary: []uint32{200}}
	_, err := c.Fetch(context.Background(), t.TempDir(), id)
	assert.ErrorIs(t, err, unix.EACCES)
}

func TestFetchErrors(t *testing.T) {
	c := NewClient(false)
	c.quotactl = func(int, *ifQuotactl) error { return errors.New("ENOTTY") }

	_, err := c.Fetch(context.Background(), t.TempDir(), identity.Identity{})
	assert.Error(t, err)

	_, err = c.Fetch(context.Background(), "/nonexistent/lustre", identity.Identity{})
	assert.Error(t, err)
}

func TestParseMembers(t *testing.T) {
	out := []byte("[if_quotactl(qc_type=0,qc_id=1234,dqb_bhardlimit=0,dqb_bsoftlimit=0,dqb_curspace=1073741824," +
		"dqb_ihardlimit=0,dqb_isoftlimit=0,dqb_curinodes=52)," +
		"if_quotactl(qc_type=0,qc_id=5678,dqb_bhardlimit=4,dqb_bsoftlimit=2,dqb_curspace=2048," +
		"dqb_ihardlimit=100,dqb_isoftlimit=50,dqb_curinodes=7)]")

	got, err := ParseMembers(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1234), got[0].ID)
	assert.Equal(t, uint64(1073741824), got[0].UsedBytes)
	assert.Equal(t, uint64(52), got[0].UsedFiles)
	assert.Equal(t, uint64(4096), got[1].HardLimitBytes)
	assert.Equal(t, uint64(100), got[1].HardLimitFiles)

	empty, err := ParseMembers([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseMembers([]byte("[if_quotactl(qc_type=0)]"))
	assert.Error(t, err)
}

func TestMembersRunsHelper(t *testing.T) {
	var called string
	run := func(_ context.Context, name string, _ ...string) ([]byte, error) {
		called = name
		return []byte("[if_quotactl(qc_type=0,qc_id=1,dqb_curspace=9)]"), nil
	}
	got, err := Members(context.Background(), run, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGroupHelper, called)
	require.Len(t, got, 1)

	fail := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("exit status 2") }
	_, err = Members(context.Background(), fail, "/bin/lgq")
	assert.Error(t, err)
}
