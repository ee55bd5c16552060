package content

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"personals/internal/pipeline"
)

// Watcher runs a sync every interval until the context ends. Cycles never
// overlap.
type Watcher struct {
	sync       *SyncService
	interval   time.Duration
	exportPath string
	log        zerolog.Logger

	// MaxCycles stops the loop after that many cycles when positive.
	MaxCycles int
}

func NewWatcher(sync *SyncService, interval time.Duration, exportPath string, log zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Watcher{sync: sync, interval: interval, exportPath: exportPath, log: log}
}

func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("watching spreadsheet")
	for cycle := 1; ; cycle++ {
		if err := w.runCycle(ctx); err != nil {
			w.log.Error().Err(err).Int("cycle", cycle).Msg("watch cycle failed")
		}
		if w.MaxCycles > 0 && cycle >= w.MaxCycles {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.interval):
		}
	}
}

func (w *Watcher) runCycle(ctx context.Context) error {
	rep, err := w.sync.Run(ctx, RunOptions{})
	if err != nil {
		return err
	}

	if w.exportPath != "" {
		if err := pipeline.ExportRecordsToXLSX(rep.Records, w.exportPath); err != nil {
			return err
		}
	}

	w.log.Info().
		Str("trace_id", rep.TraceID).
		Int("records", len(rep.Records)).
		Int("unmatched", len(rep.Unmatched)).
		Int("invalid", len(rep.Problems)).
		Msg("watch cycle done")
	return nil
}
