// Package metrics counts what one pipeline run did and writes the counts
// as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expdata"

// Recorder holds the counters of one run on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	RecordsLoaded    *prometheus.CounterVec
	RecordsDropped   *prometheus.CounterVec
	FilesMissing     *prometheus.CounterVec
	ArtifactsWritten *prometheus.CounterVec
	StageDuration    *prometheus.GaugeVec
	LastRun          prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		RecordsLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Raw records read from result files.",
		}, []string{"family"}),
		RecordsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Raw records dropped during normalization.",
		}, []string{"family"}),
		FilesMissing: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_files_missing_total",
			Help:      "Configured result files that were absent or unreadable.",
		}, []string{"family"}),
		ArtifactsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Artifacts written to the output directory.",
		}, []string{"kind"}),
		StageDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Finish stamps the run completion time.
func (r *Recorder) Finish(now time.Time) {
	r.LastRun.Set(float64(now.Unix()))
}

// WriteTextfile writes every metric in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
