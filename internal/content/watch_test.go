package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRunsCyclesAndExports(t *testing.T) {
	fx := newFixture(t, defaultMirror(), defaultSubmissions(), nil)
	out := filepath.Join(fx.dir, "exports", "personals.xlsx")

	w := NewWatcher(fx.svc, time.Millisecond, out, zerolog.Nop())
	w.MaxCycles = 2
	require.NoError(t, w.Run(context.Background()))

	runs, err := fx.history.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	fx := newFixture(t, defaultMirror(), [][]string{submissionHeader}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWatcher(fx.svc, time.Hour, "", zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	runs, err := fx.history.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
}
