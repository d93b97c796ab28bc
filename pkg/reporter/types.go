package reporter

import (
	"github.com/terminus-io/hccdu/pkg/quota"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"github.com/terminus-io/hccdu/pkg/usage"
)

// MountData is the raw input gathered for one mount.
type MountData struct {
	Name    string               `json:"name" yaml:"name"`
	Path    string               `json:"path" yaml:"path"`
	Source  string               `json:"source" yaml:"source"`
	Stat    quota.FilesystemStat `json:"stat" yaml:"stat"`
	Records []quota.Record       `json:"records" yaml:"records"`
}

type Entry struct {
	Mount string          `json:"mount" yaml:"mount"`
	Stats usage.DiskStats `json:"stats" yaml:"stats"`
}

// Section is the usage of one subject across every mount.
type Section struct {
	Subject       string  `json:"subject" yaml:"subject"`
	Label         string  `json:"label" yaml:"label"`
	Name          string  `json:"name" yaml:"name"`
	Supplementary bool    `json:"supplementary,omitempty" yaml:"supplementary,omitempty"`
	Entries       []Entry `json:"entries" yaml:"entries"`
}

type Report struct {
	UserName  string          `json:"user" yaml:"user"`
	GroupName string          `json:"group" yaml:"group"`
	UID       uint32          `json:"uid" yaml:"uid"`
	GID       uint32          `json:"gid" yaml:"gid"`
	Mounts    []MountData     `json:"mounts" yaml:"mounts"`
	Sections  []Section       `json:"sections" yaml:"sections"`
	Warnings  []threshold.Key `json:"warnings" yaml:"warnings"`

	mask threshold.WarningMask
}

// Mask is the merged warning mask of every section.
func (r *Report) Mask() threshold.WarningMask { return r.mask }

// Remediation is the code for the named mount.
func (r *Report) Remediation(mount string) threshold.Code {
	return threshold.Remediation(r.mask, mount)
}

// Section returns the first section for subject s.
func (r *Report) Section(s usage.Subject) (Section, bool) {
	for _, sec := range r.Sections {
		if sec.Subject == s.String() {
			return sec, true
		}
	}
	return Section{}, false
}

// Stats returns the stats for mount in sec.
func (sec Section) Stats(mount string) (usage.DiskStats, bool) {
	for _, e := range sec.Entries {
		if e.Mount == mount {
			return e.Stats, true
		}
	}
	return usage.DiskStats{}, false
}
