package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personals/internal"
)

func TestPersonalsStore_LoadMissingFile(t *testing.T) {
	store := NewPersonalsStore(filepath.Join(t.TempDir(), "missing.json"))
	records, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestPersonalsStore_LoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personals.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewPersonalsStore(path).Load()
	require.Error(t, err)
	assert.Equal(t, internal.CodeLoad, internal.CodeOf(err))
}

func TestPersonalsStore_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "data", "personals.json")
	store := NewPersonalsStore(path)

	require.NoError(t, store.Save([]internal.PersonalRecord{{
		ID:         "personal-1-0",
		Title:      "Coffee & <books>",
		Personal:   "Hi",
		Contact:    "https://forms.gle/x?a=1&b=2",
		DatePosted: "2024-01-02",
	}}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(blob)

	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"id\": \"personal-1-0\""), text)
	assert.Contains(t, text, `"title": "Coffee & <books>"`)
	assert.Contains(t, text, `"categories": []`)
	assert.Contains(t, text, `"locations": []`)
	assert.NotContains(t, text, "null")
}

func TestPersonalsStore_RoundTrip(t *testing.T) {
	store := NewPersonalsStore(filepath.Join(t.TempDir(), "personals.json"))
	in := []internal.PersonalRecord{{
		ID: "a", Title: "A", Categories: []string{"Community"}, Locations: []string{"Boston"},
	}}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPersonalsStore_SaveEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personals.json")
	require.NoError(t, NewPersonalsStore(path).Save(nil))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(blob))
}

func TestPersonalsStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewPersonalsStore(filepath.Join(blocker, "personals.json")).Save(nil)
	require.Error(t, err)
	assert.Equal(t, internal.CodeSave, internal.CodeOf(err))
}
