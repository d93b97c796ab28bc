package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminus-io/hccdu/pkg/quota"
)

const (
	callerUID = 1000
	callerGID = 500
	gb        = 1000 * 1000 * 1000
)

// fsStat builds a 1 KiB block filesystem owned by uid/gid.
func fsStat(totalBlocks, availBlocks, totalFiles, availFiles uint64, uid, gid uint32) quota.FilesystemStat {
	return quota.FilesystemStat{
		BlockSize:       1024,
		TotalBlocks:     totalBlocks,
		AvailableBlocks: availBlocks,
		TotalFiles:      totalFiles,
		AvailableFiles:  availFiles,
		OwnerUID:        uid,
		OwnerGID:        gid,
	}
}

func TestMinNotZero(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{3, 7, 3},
		{7, 3, 3},
		{5, 5, 5},
		{0, 9, 9},
		{9, 0, 9},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinNotZero(tt.a, tt.b), "MinNotZero(%d, %d)", tt.a, tt.b)
	}
}

func TestMinNotZeroMatchesMinForNonZero(t *testing.T) {
	for a := uint64(1); a < 50; a += 3 {
		for b := uint64(1); b < 50; b += 5 {
			assert.Equal(t, min(a, b), MinNotZero(a, b))
		}
	}
}

func TestReconcilePrimaryWithQuota(t *testing.T) {
	fs := fsStat(2000*gb/1024, 1000*gb/1024, 1_000_000, 900_000, 0, 0)
	list := []quota.Record{
		{Kind: quota.User, ID: callerUID, UsedBytes: 750 * gb, HardLimitBytes: 1000 * gb, UsedFiles: 10, HardLimitFiles: 0},
		{Kind: quota.Group, ID: callerGID, UsedBytes: 900 * gb, HardLimitBytes: 0, UsedFiles: 40, HardLimitFiles: 500},
	}

	t.Run("user takes tightest non zero bound", func(t *testing.T) {
		ds, err := Reconcile(User(), list, fs, callerUID, callerGID)
		require.NoError(t, err)
		assert.Equal(t, uint64(750*gb), ds.CurrentBytes)
		assert.Equal(t, uint64(1000*gb), ds.LimitBytes)
		assert.Equal(t, uint64(10), ds.CurrentFiles)
		assert.Equal(t, uint64(500), ds.LimitFiles)
		assert.False(t, ds.HasOverride())
	})

	t.Run("group ignores user limit", func(t *testing.T) {
		ds, err := Reconcile(Group(), list, fs, callerUID, callerGID)
		require.NoError(t, err)
		assert.Equal(t, uint64(900*gb), ds.CurrentBytes)
		assert.Equal(t, fs.TotalBytes(), ds.LimitBytes)
		assert.Equal(t, uint64(40), ds.CurrentFiles)
		assert.Equal(t, uint64(500), ds.LimitFiles)
	})
}

func TestReconcileUnlimitedFallsThroughToFilesystemTotal(t *testing.T) {
	fs := fsStat(4096, 1024, 100, 50, 0, 0)
	list := []quota.Record{
		{Kind: quota.User, ID: callerUID, UsedBytes: 42},
		{Kind: quota.Group, ID: callerGID, UsedBytes: 84},
	}

	ds, err := Reconcile(User(), list, fs, callerUID, callerGID)
	require.NoError(t, err)
	assert.Equal(t, fs.TotalBytes(), ds.LimitBytes)
	assert.Equal(t, uint64(100), ds.LimitFiles)
}

func TestReconcileWithoutQuotaData(t *testing.T) {
	tests := []struct {
		name     string
		subject  Subject
		ownerUID uint32
		ownerGID uint32
		override string
	}{
		{"user owns mount, user subject", User(), callerUID, 0, ""},
		{"user owns mount, group subject", Group(), callerUID, 0, "user unique, see above"},
		{"group owns mount, group subject", Group(), 0, callerGID, ""},
		{"group owns mount, user subject", User(), 0, callerGID, "user disk usage not tracked"},
		{"foreign mount, user subject", User(), 0, 0, "user disk usage not tracked"},
		{"foreign mount, group subject", Group(), 0, 0, "primary group disk usage not tracked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := fsStat(1000, 250, 80, 20, tt.ownerUID, tt.ownerGID)
			ds, err := Reconcile(tt.subject, nil, fs, callerUID, callerGID)
			require.NoError(t, err)
			assert.Equal(t, tt.override, ds.Override)
			if tt.override == "" {
				assert.Equal(t, uint64(750*1024), ds.CurrentBytes)
				assert.Equal(t, uint64(1000*1024), ds.LimitBytes)
				assert.Equal(t, uint64(60), ds.CurrentFiles)
				assert.Equal(t, uint64(80), ds.LimitFiles)
			} else {
				assert.Zero(t, ds.LimitBytes)
				assert.Zero(t, ds.CurrentBytes)
			}
		})
	}
}

func TestReconcileSupplementary(t *testing.T) {
	fs := fsStat(1000, 500, 100, 50, 0, 0)
	list := []quota.Record{
		{Kind: quota.User, ID: callerUID},
		{Kind: quota.Group, ID: callerGID},
		{Kind: quota.Group, ID: 600, UsedBytes: 2048, HardLimitBytes: 4096, UsedFiles: 3, HardLimitFiles: 0},
	}

	ds, err := Reconcile(Supplementary(0), list, fs, callerUID, callerGID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), ds.CurrentBytes)
	assert.Equal(t, uint64(4096), ds.LimitBytes)
	assert.Equal(t, uint64(3), ds.CurrentFiles)
	assert.Equal(t, uint64(100), ds.LimitFiles)

	ds, err = Reconcile(Supplementary(0), nil, fs, callerUID, callerGID)
	require.NoError(t, err)
	assert.Equal(t, "supplementary group disk usage not tracked", ds.Override)

	_, err = Reconcile(Supplementary(1), list, fs, callerUID, callerGID)
	assert.ErrorIs(t, err, ErrInvalidSubjectIndex)
}

func TestReconcileFilesystemWide(t *testing.T) {
	ds, err := Reconcile(Filesystem(), nil, fsStat(1000, 0, 10, 0, callerUID, callerGID), callerUID, callerGID)
	require.NoError(t, err)
	assert.Equal(t, "user unique, see above", ds.Override)

	ds, err = Reconcile(Filesystem(), nil, fsStat(1000, 0, 10, 0, 0, callerGID), callerUID, callerGID)
	require.NoError(t, err)
	assert.Equal(t, "group unique, see above", ds.Override)

	ds, err = Reconcile(Filesystem(), []quota.Record{{}, {}}, fsStat(1000, 100, 10, 4, 0, 0), callerUID, callerGID)
	require.NoError(t, err)
	assert.False(t, ds.HasOverride())
	assert.Equal(t, uint64(900*1024), ds.CurrentBytes)
	assert.Equal(t, uint64(1000*1024), ds.LimitBytes)
	assert.Equal(t, uint64(6), ds.CurrentFiles)
	assert.Equal(t, uint64(10), ds.LimitFiles)
}

func TestReconcileShortPrimaryList(t *testing.T) {
	_, err := Reconcile(Group(), []quota.Record{{Kind: quota.User}}, fsStat(1, 1, 1, 1, 0, 0), callerUID, callerGID)
	assert.ErrorIs(t, err, ErrInvalidSubjectIndex)
}

func TestSupplementaryIndex(t *testing.T) {
	list := []quota.Record{
		{Kind: quota.User, ID: 1},
		{Kind: quota.Group, ID: 2},
		{Kind: quota.Group, ID: 30},
		{Kind: quota.Group, ID: 40},
	}

	s, ok := SupplementaryIndex(list, 40)
	require.True(t, ok)
	assert.Equal(t, Supplementary(1), s)
	assert.Equal(t, 3, s.Position())

	_, ok = SupplementaryIndex(list, 2)
	assert.False(t, ok)
	_, ok = SupplementaryIndex(nil, 30)
	assert.False(t, ok)
}
