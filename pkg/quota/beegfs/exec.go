package beegfs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/utils"
	"k8s.io/klog/v2"
)

const DefaultBinary = "/usr/bin/beegfs-ctl"

// BeeGFSCLI reads quotas with `beegfs-ctl --getquota --csv`, one call per id.
type BeeGFSCLI struct {
	Binary        string
	Supplementary bool
	run           utils.Runner
}

func NewBeeGFSCLI(binary string, supplementary bool) *BeeGFSCLI {
	if binary == "" {
		binary = DefaultBinary
	}
	return &BeeGFSCLI{Binary: binary, Supplementary: supplementary, run: utils.StdoutRunner}
}

func (c *BeeGFSCLI) WithRunner(r utils.Runner) *BeeGFSCLI {
	c.run = r
	return c
}

func (c *BeeGFSCLI) Name() string { return "beegfs" }

func (c *BeeGFSCLI) Fetch(ctx context.Context, mountPoint string, id identity.Identity) ([]quota.Record, error) {
	user, err := c.getQuota(ctx, mountPoint, quota.User, id.UID)
	if err != nil {
		return nil, err
	}
	group, err := c.getQuota(ctx, mountPoint, quota.Group, id.GID)
	if err != nil {
		return nil, err
	}

	list := []quota.Record{user, group}
	if !c.Supplementary {
		return list, nil
	}
	for _, gid := range id.Supplementary {
		r, err := c.getQuota(ctx, mountPoint, quota.Group, gid)
		if err != nil {
			klog.V(1).InfoS("Skipping supplementary group", "mount", mountPoint, "gid", gid, "err", err)
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

func (c *BeeGFSCLI) getQuota(ctx context.Context, mountPoint string, kind quota.Kind, id uint32) (quota.Record, error) {
	flag := "--uid"
	if kind == quota.Group {
		flag = "--gid"
	}
	args := []string{"--getquota", "--csv", "--mount=" + mountPoint, flag, strconv.FormatUint(uint64(id), 10)}

	out, err := c.run(ctx, c.Binary, args...)
	if err != nil {
		return quota.Record{}, fmt.Errorf("beegfs-ctl %s %d on %s: %w", flag, id, mountPoint, err)
	}
	r, err := ParseCSV(out, kind)
	if err != nil {
		return quota.Record{}, fmt.Errorf("beegfs-ctl %s %d on %s: %w", flag, id, mountPoint, err)
	}
	return r, nil
}
