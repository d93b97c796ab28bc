package rquota

import (
	"context"
	"fmt"

	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/utils"
	"k8s.io/klog/v2"
)

const DefaultBinary = "/usr/bin/quota"

// RQuotaCLI reads rpc.rquotad quotas through the quota(1) tool.
type RQuotaCLI struct {
	Binary        string
	Supplementary bool
	run           utils.Runner
}

func NewRQuotaCLI(binary string, supplementary bool) *RQuotaCLI {
	if binary == "" {
		binary = DefaultBinary
	}
	return &RQuotaCLI{Binary: binary, Supplementary: supplementary, run: utils.ExecRunner}
}

// WithRunner replaces the command runner, mostly for tests.
func (c *RQuotaCLI) WithRunner(r utils.Runner) *RQuotaCLI {
	c.run = r
	return c
}

func (c *RQuotaCLI) Name() string { return "rquota" }

func (c *RQuotaCLI) Fetch(ctx context.Context, mountPoint string, id identity.Identity) ([]quota.Record, error) {
	// -F rpc: ask rpc.rquotad, -p: grace as epoch seconds, -w: no line wrap
	args := []string{"-F", "rpc", "-v", "-p", "-w", "-u", "-g", "-Q", "-f", mountPoint}

	out, err := c.run(ctx, c.Binary, args...)
	if err != nil {
		// quota(1) exits non-zero when a limit is exceeded but still prints
		// the report, so only give up when there is nothing to parse.
		if len(out) == 0 {
			return nil, fmt.Errorf("rquota on %s: %w", mountPoint, err)
		}
		klog.V(2).InfoS("quota exited non-zero, parsing output anyway", "mount", mountPoint, "err", err)
	}

	blocks, err := ParseReport(out)
	if err != nil {
		return nil, fmt.Errorf("rquota on %s: %w", mountPoint, err)
	}
	return Assemble(blocks, id, c.Supplementary), nil
}
