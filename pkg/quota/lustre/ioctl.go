package lustre

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

const (
	llIocQuotactl   = 0xc0b066a2
	lustreQGetQuota = 0x800007

	usrQuota = 0
	grpQuota = 1
)

type obdDqinfo struct {
	BGrace uint64
	IGrace uint64
	Flags  uint32
	Valid  uint32
}

type obdDqblk struct {
	BHardLimit uint64 // KiB
	BSoftLimit uint64 // KiB
	CurSpace   uint64 // bytes
	IHardLimit uint64
	ISoftLimit uint64
	CurInodes  uint64
	BTime      uint64
	ITime      uint64
	Valid      uint32
	Padding    uint32
}

// ifQuotactl mirrors struct if_quotactl from lustre_user.h.
type ifQuotactl struct {
	Cmd   uint32
	Type  uint32
	ID    uint32
	Stat  uint32
	Valid uint32
	Idx   uint32
	Info  obdDqinfo
	Blk   obdDqblk
	Obd   [16]byte
	UUID  [40]byte
}

func getQuotaRequest(kind quota.Kind, id uint32) ifQuotactl {
	t := uint32(usrQuota)
	if kind == quota.Group {
		t = grpQuota
	}
	return ifQuotactl{Cmd: lustreQGetQuota, Type: t, ID: id}
}

func (q *ifQuotactl) record() quota.Record {
	kind := quota.User
	if q.Type == grpQuota {
		kind = quota.Group
	}
	return quota.Record{
		Kind:           kind,
		ID:             q.ID,
		UsedBytes:      q.Blk.CurSpace,
		SoftLimitBytes: q.Blk.BSoftLimit * 1024,
		HardLimitBytes: q.Blk.BHardLimit * 1024,
		UsedFiles:      q.Blk.CurInodes,
		SoftLimitFiles: q.Blk.ISoftLimit,
		HardLimitFiles: q.Blk.IHardLimit,
	}
}

func ioctlQuotactl(fd int, q *ifQuotactl) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(llIocQuotactl), uintptr(unsafe.Pointer(q)))
	if errno != 0 {
		return errno
	}
	return nil
}

// Client reads Lustre quotas with the LL_IOC_QUOTACTL ioctl on the mount
// directory.
type Client struct {
	Supplementary bool
	quotactl      func(fd int, q *ifQuotactl) error
}

func NewClient(supplementary bool) *Client {
	return &Client{Supplementary: supplementary, quotactl: ioctlQuotactl}
}

func (c *Client) Name() string { return "lustre" }

func (c *Client) Fetch(ctx context.Context, mountPoint string, id identity.Identity) ([]quota.Record, error) {
	fd, err := unix.Open(mountPoint, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", mountPoint, err)
	}
	defer unix.Close(fd)

	type query struct {
		kind quota.Kind
		id   uint32
	}
	queries := []query{{quota.User, id.UID}, {quota.Group, id.GID}}
	if c.Supplementary {
		for _, gid := range id.Supplementary {
			queries = append(queries, query{quota.Group, gid})
		}
	}

	list := make([]quota.Record, 0, len(queries))
	for i, qr := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := getQuotaRequest(qr.kind, qr.id)
		if err := c.quotactl(fd, &q); err != nil {
			if i < 2 {
				return nil, fmt.Errorf("quotactl %s %d on %s: %w", qr.kind, qr.id, mountPoint, err)
			}
			klog.V(1).InfoS("Skipping supplementary group", "gid", qr.id, "mount", mountPoint, "err", err)
			continue
		}
		list = append(list, q.record())
	}
	return list, nil
}
