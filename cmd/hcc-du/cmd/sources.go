package cmd

import (
	"fmt"

	"github.com/terminus-io/hccdu/pkg/config"
	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/quota/beegfs"
	"github.com/terminus-io/hccdu/pkg/quota/lustre"
	"github.com/terminus-io/hccdu/pkg/quota/rquota"
	"github.com/terminus-io/hccdu/pkg/reporter"
	"github.com/terminus-io/hccdu/pkg/utils"
	"k8s.io/klog/v2"
)

func newSource(m config.MountConfig, supplementary bool) (quota.Source, error) {
	switch m.Backend {
	case config.BackendRQuota:
		return rquota.NewRQuotaCLI(m.Binary, supplementary), nil
	case config.BackendLustre:
		return lustre.NewClient(supplementary), nil
	case config.BackendBeeGFS:
		return beegfs.NewBeeGFSCLI(m.Binary, supplementary), nil
	default:
		return nil, fmt.Errorf("mount %s: unknown backend %q", m.Name, m.Backend)
	}
}

// buildMounts resolves configured mounts to paths and quota sources. A home
// mount is the filesystem holding the caller's home directory.
func buildMounts(cfg *config.Config, id identity.Identity, supplementary bool) ([]reporter.Mount, error) {
	mounts := make([]reporter.Mount, 0, len(cfg.Mounts))
	for _, m := range cfg.Mounts {
		path := m.Path
		if m.Home && path == "" {
			mp, err := utils.GetMountPoint(id.HomeDir)
			if err != nil {
				return nil, fmt.Errorf("find mount of home %s: %w", id.HomeDir, err)
			}
			path = mp
			klog.V(2).InfoS("Resolved home mount", "home", id.HomeDir, "mount", path)
		}

		src, err := newSource(m, supplementary)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, reporter.Mount{Name: m.Name, Path: path, Source: src})
	}
	return mounts, nil
}

func newReporter(cfg *config.Config, id identity.Identity, supplementary bool) (*reporter.Reporter, error) {
	mounts, err := buildMounts(cfg, id, supplementary)
	if err != nil {
		return nil, err
	}
	return reporter.NewReporter(mounts,
		reporter.WithSite(cfg.Site),
		reporter.WithFetchTimeout(cfg.FetchTimeout),
		reporter.WithThresholds(cfg.Thresholds),
	), nil
}
