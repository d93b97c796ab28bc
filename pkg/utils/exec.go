package utils

import (
	"context"
	"fmt"
	"os/exec"

	"k8s.io/klog/v2"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	klog.V(4).InfoS("Exec", "cmd", name, "args", args)
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s failed: %w, out: %s", name, err, string(out))
	}
	return out, nil
}

// StdoutRunner is like ExecRunner but leaves stderr out of the returned bytes.
func StdoutRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	klog.V(4).InfoS("Exec", "cmd", name, "args", args)
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return out, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}
