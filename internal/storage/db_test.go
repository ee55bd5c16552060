package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personals/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	first := uuid.NewString()
	second := uuid.NewString()
	require.NoError(t, db.InsertRun(first, internal.ModeSync))
	require.NoError(t, db.FinishRun(first, internal.RunSucceeded, "", map[string]float64{"total_ms": 12.5}, map[string]int{"records": 3}))
	require.NoError(t, db.InsertRun(second, internal.ModeRow))
	require.NoError(t, db.FinishRun(second, internal.RunFailed, internal.CodeAPI, nil, nil))

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second, runs[0].TraceID)
	assert.Equal(t, "row", runs[0].Mode)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "API_ERROR", runs[0].ErrorCode)

	assert.Equal(t, first, runs[1].TraceID)
	assert.Equal(t, "succeeded", runs[1].Status)
	assert.Equal(t, 3, runs[1].Counts["records"])
	assert.Equal(t, 12.5, runs[1].Timings["total_ms"])
	assert.NotEmpty(t, runs[1].FinishedAt)

	limited, err := db.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFinishUnknownRun(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.FinishRun("nope", internal.RunSucceeded, "", nil, nil))
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetadata(MetaLastSuccess)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.SetMetadata(MetaLastSuccess, "2024-01-01T00:00:00Z"))
	require.NoError(t, db.SetMetadata(MetaLastSuccess, "2024-01-02T00:00:00Z"))

	v, err = db.GetMetadata(MetaLastSuccess)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "2024-01-02T00:00:00Z", *v)
}
