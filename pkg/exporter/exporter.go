package exporter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terminus-io/hccdu/pkg/reporter"
	"k8s.io/klog/v2"
)

// WriteTextfile registers the report's collector on a fresh registry and
// writes it to path in the node_exporter textfile format.
func WriteTextfile(rep *reporter.Report, path string) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewReportCollector(rep)); err != nil {
		return fmt.Errorf("register report collector: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	klog.V(2).InfoS("Wrote metrics", "path", path, "warnings", len(rep.Warnings))
	return nil
}
