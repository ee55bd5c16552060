package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"personals/internal"
)

type RecorderInterface interface {
	ObserveRun(mode internal.RunMode, status internal.RunStatus, counts map[string]int, duration time.Duration)
	Flush() error
}

// Recorder keeps gauges on its own registry and writes them in the node
// exporter textfile format.
type Recorder struct {
	path        string
	registry    *prometheus.Registry
	runStatus   *prometheus.GaugeVec
	counts      *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New returns a noop recorder when path is empty.
func New(path string) RecorderInterface {
	if path == "" {
		return &noopRecorder{}
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		path:     path,
		registry: reg,
		runStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "personals_sync_last_run_success",
			Help: "1 if the last run of the mode succeeded, 0 otherwise",
		}, []string{"mode"}),
		counts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "personals_sync_rows",
			Help: "Row and record counts of the last run",
		}, []string{"mode", "kind"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "personals_sync_duration_seconds",
			Help: "Wall time of the last run",
		}, []string{"mode"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "personals_sync_last_run_timestamp_seconds",
			Help: "Unix time of the last run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "personals_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

func (r *Recorder) ObserveRun(mode internal.RunMode, status internal.RunStatus, counts map[string]int, duration time.Duration) {
	m := string(mode)
	now := float64(time.Now().Unix())
	r.lastRun.Set(now)
	r.duration.WithLabelValues(m).Set(duration.Seconds())
	if status == internal.RunSucceeded {
		r.runStatus.WithLabelValues(m).Set(1)
		r.lastSuccess.Set(now)
	} else {
		r.runStatus.WithLabelValues(m).Set(0)
	}
	for kind, n := range counts {
		r.counts.WithLabelValues(m, kind).Set(float64(n))
	}
}

// Flush writes every gauge to the textfile.
func (r *Recorder) Flush() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(r.path, r.registry)
}

type noopRecorder struct{}

func (n *noopRecorder) ObserveRun(_ internal.RunMode, _ internal.RunStatus, _ map[string]int, _ time.Duration) {
}
func (n *noopRecorder) Flush() error { return nil }
