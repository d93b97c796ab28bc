package exporter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terminus-io/hccdu/pkg/reporter"
)

var (
	// space
	descBytesUsed = prometheus.NewDesc(
		"hccdu_used_bytes",
		"Reconciled usage in bytes per subject and mount",
		[]string{"user", "subject", "name", "mount"}, nil,
	)
	descBytesLimit = prometheus.NewDesc(
		"hccdu_limit_bytes",
		"Effective byte limit per subject and mount",
		[]string{"user", "subject", "name", "mount"}, nil,
	)
	// inodes
	descFilesUsed = prometheus.NewDesc(
		"hccdu_used_files",
		"Reconciled file count per subject and mount",
		[]string{"user", "subject", "name", "mount"}, nil,
	)
	descFilesLimit = prometheus.NewDesc(
		"hccdu_limit_files",
		"Effective file limit per subject and mount",
		[]string{"user", "subject", "name", "mount"}, nil,
	)
	descWarning = prometheus.NewDesc(
		"hccdu_warning",
		"1 for every raised warning flag",
		[]string{"user", "mount", "category", "dimension"}, nil,
	)
	descRecords = prometheus.NewDesc(
		"hccdu_source_records",
		"Quota records returned by the mount's backend",
		[]string{"user", "mount", "source", "uid"}, nil,
	)
)

// ReportCollector exposes one report as constant metrics.
type ReportCollector struct {
	report *reporter.Report
}

func NewReportCollector(rep *reporter.Report) *ReportCollector {
	return &ReportCollector{report: rep}
}

func (c *ReportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descBytesUsed
	ch <- descBytesLimit
	ch <- descFilesUsed
	ch <- descFilesLimit
	ch <- descWarning
	ch <- descRecords
}

func (c *ReportCollector) Collect(ch chan<- prometheus.Metric) {
	rep := c.report
	for _, sec := range rep.Sections {
		for _, e := range sec.Entries {
			// override texts carry no numbers
			if e.Stats.HasOverride() {
				continue
			}
			labels := []string{rep.UserName, sec.Subject, sec.Name, e.Mount}
			ch <- prometheus.MustNewConstMetric(descBytesUsed, prometheus.GaugeValue, float64(e.Stats.CurrentBytes), labels...)
			ch <- prometheus.MustNewConstMetric(descBytesLimit, prometheus.GaugeValue, float64(e.Stats.LimitBytes), labels...)
			ch <- prometheus.MustNewConstMetric(descFilesUsed, prometheus.GaugeValue, float64(e.Stats.CurrentFiles), labels...)
			ch <- prometheus.MustNewConstMetric(descFilesLimit, prometheus.GaugeValue, float64(e.Stats.LimitFiles), labels...)
		}
	}

	for _, k := range rep.Warnings {
		ch <- prometheus.MustNewConstMetric(descWarning, prometheus.GaugeValue, 1,
			rep.UserName, k.Mount, k.Category.String(), k.Dimension.String())
	}

	for _, m := range rep.Mounts {
		ch <- prometheus.MustNewConstMetric(descRecords, prometheus.GaugeValue, float64(len(m.Records)),
			rep.UserName, m.Name, m.Source, strconv.FormatUint(uint64(rep.UID), 10))
	}
}
