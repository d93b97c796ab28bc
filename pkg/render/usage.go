package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terminus-io/hccdu/pkg/reporter"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"github.com/terminus-io/hccdu/pkg/usage"
	"github.com/terminus-io/hccdu/pkg/utils"
	"golang.org/x/term"
)

const (
	defaultRows    = 24
	defaultColumns = 80
	bytesPerGB     = float64(utils.GiB)
)

// WindowSize returns the terminal size of f, or 24x80 when f is not a tty.
func WindowSize(f *os.File) (rows, columns int) {
	if f == nil {
		return defaultRows, defaultColumns
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return defaultRows, defaultColumns
	}
	return h, w
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

type Printer struct {
	out     io.Writer
	opts    BarOptions
	columns int
}

func NewPrinter(out io.Writer, opts BarOptions, columns int) *Printer {
	if columns <= 0 {
		columns = defaultColumns
	}
	return &Printer{out: out, opts: opts, columns: columns}
}

// mountTitle turns "work" into "Work".
func mountTitle(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Section prints "Disk usage for <label> <name>:" and one bar per mount.
func (p *Printer) Section(sec reporter.Section) {
	var line strings.Builder
	widths := utils.EqualSplit(p.columns-2, len(sec.Entries))
	for i, e := range sec.Entries {
		title := mountTitle(e.Mount)
		width := widths[len(widths)-1-i] - (len(title) + 3)

		used := float64(e.Stats.CurrentBytes) / bytesPerGB
		total := float64(e.Stats.LimitBytes) / bytesPerGB
		if e.Stats.HasOverride() {
			used, total = 0, 0
		}
		line.WriteString("  " + title + " " + Bar(p.opts, e.Stats.Override, used, total, width))
	}
	fmt.Fprintf(p.out, "Disk usage for %s %s:\n%s\n", sec.Label, sec.Name, line.String())
}

// Report prints the primary sections, then supplementary groups after a
// blank gap when any are present.
func (p *Printer) Report(rep *reporter.Report) {
	gap := false
	for _, sec := range rep.Sections {
		if sec.Supplementary && !gap {
			gap = true
			fmt.Fprintln(p.out)
		}
		p.Section(sec)
	}
}

// Login prints the login-time messages for the raised flags on mount.
func (p *Printer) Login(rep *reporter.Report, mount, message string) {
	mask := rep.Mask()
	if !mask.Any() {
		return
	}

	user, blocks, fs := threshold.CategoryUser, threshold.Blocks, threshold.CategoryFilesystem
	if mask.Match(&mount, &user, &blocks) {
		if pct, ok := groupShare(rep, mount); ok {
			fmt.Fprintf(p.out, "you are using %.1f%% of your groups space on /%s\n", pct, mount)
		}
	}
	if mask.HasCategory(threshold.CategoryGroup) {
		fmt.Fprintln(p.out, "your group is doing something wrong, help them")
	}
	if mask.Match(&mount, &fs, &blocks) {
		fmt.Fprintln(p.out, styled(center(message, p.columns), sgrBlink, sgrBold))
	}
}

// groupShare is the user's usage on mount as a percentage of the primary
// group's.
func groupShare(rep *reporter.Report, mount string) (float64, bool) {
	u, ok := rep.Section(usage.User())
	if !ok {
		return 0, false
	}
	g, ok := rep.Section(usage.Group())
	if !ok {
		return 0, false
	}
	us, _ := u.Stats(mount)
	gs, _ := g.Stats(mount)
	if us.HasOverride() || gs.HasOverride() || gs.CurrentBytes == 0 {
		return 0, false
	}
	return 100 * float64(us.CurrentBytes) / float64(gs.CurrentBytes), true
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
