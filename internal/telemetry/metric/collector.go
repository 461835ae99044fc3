// Package metric provides Prometheus metrics for tokcodec.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
)

// Collector exports build information as a constant gauge.
type Collector struct {
	info buildinfo.Info
	desc *prometheus.Desc
}

// NewCollector creates a build info collector.
func NewCollector(info buildinfo.Info) *Collector {
	return &Collector{
		info: info,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "build_info"),
			"Build information, value is always 1",
			[]string{"version", "commit", "go_version"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1,
		c.info.Version, c.info.Commit, c.info.GoVersion)
}
