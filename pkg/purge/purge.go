package purge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"
)

// ErrNoPurgeData is returned when the user has no purge report.
var ErrNoPurgeData = errors.New("no purge data")

// Pager displays a file interactively.
type Pager func(ctx context.Context, path string) error

// LessPager pages path through `less -n` on the process's terminal.
func LessPager(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "less", "-n", path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}

// Reports reads the per-user files written by the purge scanner:
// <dir>/<user>.stat with a summary and <dir>/<user>.list with every
// eligible file.
type Reports struct {
	dir   string
	pager Pager
}

func NewReports(dir string, pager Pager) *Reports {
	if pager == nil {
		pager = LessPager
	}
	return &Reports{dir: dir, pager: pager}
}

func (r *Reports) path(user, ext string) string {
	return filepath.Join(r.dir, user+"."+ext)
}

// PrintStatus writes the user's purge summary headed by its timestamp.
func (r *Reports) PrintStatus(w io.Writer, user string) error {
	path := r.path(user, "stat")
	fi, err := os.Stat(path)
	if err != nil {
		klog.V(1).InfoS("No purge status", "path", path, "err", err)
		return fmt.Errorf("%w for %s", ErrNoPurgeData, user)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	fmt.Fprintf(w, "Eligible /work purge status for %s (as of %s):\n%s", user, fi.ModTime().Format(time.ANSIC), content)
	return nil
}

// ShowList pages the user's list of purge candidates.
func (r *Reports) ShowList(ctx context.Context, user string) error {
	path := r.path(user, "list")
	if _, err := os.Stat(path); err != nil {
		klog.V(1).InfoS("No purge list", "path", path, "err", err)
		return fmt.Errorf("%w for %s", ErrNoPurgeData, user)
	}
	return r.pager(ctx, path)
}

// PrintList copies the user's list of purge candidates to w.
func (r *Reports) PrintList(w io.Writer, user string) error {
	f, err := os.Open(r.path(user, "list"))
	if err != nil {
		klog.V(1).InfoS("No purge list", "user", user, "err", err)
		return fmt.Errorf("%w for %s", ErrNoPurgeData, user)
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
