package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"github.com/terminus-io/hccdu/pkg/usage"
	"github.com/terminus-io/hccdu/pkg/utils"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

const defaultFetchTimeout = 10 * time.Second

// Mount is one filesystem shown in the report, backed by a quota source.
type Mount struct {
	Name   string
	Path   string
	Source quota.Source
}

// Reporter builds usage reports for a fixed set of mounts.
type Reporter struct {
	mounts     []Mount
	site       string
	timeout    time.Duration
	thresholds threshold.Config
	statFn     func(path string) (quota.FilesystemStat, error)
}

type Option func(*Reporter)

func WithSite(site string) Option {
	return func(r *Reporter) { r.site = site }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithThresholds(cfg threshold.Config) Option {
	return func(r *Reporter) { r.thresholds = cfg }
}

// WithStatFunc replaces statfs, mostly for tests.
func WithStatFunc(fn func(path string) (quota.FilesystemStat, error)) Option {
	return func(r *Reporter) { r.statFn = fn }
}

func NewReporter(mounts []Mount, opts ...Option) *Reporter {
	r := &Reporter{
		mounts:     mounts,
		site:       "HCC",
		timeout:    defaultFetchTimeout,
		thresholds: threshold.DefaultConfig(),
		statFn:     utils.GetFilesystemStat,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collect gathers every mount's statistics and quota records in parallel,
// each mount bounded by the fetch timeout. A backend failure leaves that
// mount's list empty; a statfs failure or timeout aborts.
func (r *Reporter) Collect(ctx context.Context, id identity.Identity) ([]MountData, error) {
	data := make([]MountData, len(r.mounts))
	g, ctx := errgroup.WithContext(ctx)

	for i, m := range r.mounts {
		i, m := i, m
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			stat, err := r.stat(fetchCtx, m.Path)
			if err != nil {
				return fmt.Errorf("statfs %s: %w", m.Path, err)
			}

			records, err := m.Source.Fetch(fetchCtx, m.Path, id)
			if err != nil {
				klog.V(1).InfoS("Quota source failed, treating mount as untracked", "mount", m.Name, "source", m.Source.Name(), "err", err)
				records = nil
			}
			klog.V(4).InfoS("Collected mount", "mount", m.Name, "records", len(records))

			data[i] = MountData{Name: m.Name, Path: m.Path, Source: m.Source.Name(), Stat: stat, Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// stat runs statFn under ctx. A statfs stuck on a dead NFS server is left
// behind once ctx expires.
func (r *Reporter) stat(ctx context.Context, path string) (quota.FilesystemStat, error) {
	type result struct {
		stat quota.FilesystemStat
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		st, err := r.statFn(path)
		ch <- result{st, err}
	}()

	select {
	case res := <-ch:
		return res.stat, res.err
	case <-ctx.Done():
		return quota.FilesystemStat{}, ctx.Err()
	}
}

// Build reconciles collected data into a report. Supplementary group
// sections are added when supplementary is set.
func (r *Reporter) Build(id identity.Identity, data []MountData, supplementary bool) (*Report, error) {
	rep := &Report{
		UserName:  id.UserName,
		GroupName: id.GroupName,
		UID:       id.UID,
		GID:       id.GID,
		Mounts:    data,
		mask:      threshold.NewMask(),
	}

	add := func(s usage.Subject, label, name string, resolve func(MountData) (usage.DiskStats, error)) error {
		sec := Section{Subject: s.String(), Label: label, Name: name, Supplementary: s.Kind == usage.SupplementaryGroup}
		stats := make(map[string]usage.DiskStats, len(data))
		for _, md := range data {
			ds, err := resolve(md)
			if err != nil {
				return fmt.Errorf("%s on %s: %w", s, md.Name, err)
			}
			stats[md.Name] = ds
			sec.Entries = append(sec.Entries, Entry{Mount: md.Name, Stats: ds})
		}
		// supplementary groups are shown but never drive login warnings
		if s.Kind != usage.SupplementaryGroup {
			rep.mask = rep.mask.Merge(threshold.Evaluate(threshold.CategoryOf(s), stats, r.thresholds))
		}
		rep.Sections = append(rep.Sections, sec)
		return nil
	}
	primary := func(s usage.Subject) func(MountData) (usage.DiskStats, error) {
		return func(md MountData) (usage.DiskStats, error) {
			return usage.Reconcile(s, md.Records, md.Stat, id.UID, id.GID)
		}
	}

	if err := add(usage.User(), usage.User().Label(), id.UserName, primary(usage.User())); err != nil {
		return nil, err
	}
	if err := add(usage.Group(), usage.Group().Label(), id.GroupName, primary(usage.Group())); err != nil {
		return nil, err
	}
	if err := add(usage.Filesystem(), "all "+r.site, "groups", primary(usage.Filesystem())); err != nil {
		return nil, err
	}

	if supplementary {
		for i, gid := range id.Supplementary {
			s := usage.Supplementary(i)
			err := add(s, s.Label(), identity.GroupName(gid), func(md MountData) (usage.DiskStats, error) {
				if len(md.Records) == 0 {
					return usage.Untracked(s), nil
				}
				pos, ok := usage.SupplementaryIndex(md.Records, gid)
				if !ok {
					return usage.Untracked(s), nil
				}
				return usage.Reconcile(pos, md.Records, md.Stat, id.UID, id.GID)
			})
			if err != nil {
				return nil, err
			}
		}
	}

	rep.Warnings = rep.mask.Keys()
	return rep, nil
}

func (r *Reporter) Run(ctx context.Context, id identity.Identity, supplementary bool) (*Report, error) {
	klog.V(2).InfoS("Starting report", "user", id.UserName, "mounts", len(r.mounts))
	data, err := r.Collect(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Build(id, data, supplementary)
}
