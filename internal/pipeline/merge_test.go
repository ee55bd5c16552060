package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personals/internal"
)

func rec(id, title string) internal.PersonalRecord {
	return internal.PersonalRecord{ID: id, Title: title, Categories: []string{}, Locations: []string{}}
}

func TestMergeReplacesWholeList(t *testing.T) {
	existing := []internal.PersonalRecord{rec("A", "a"), rec("B", "b")}
	updatedB := rec("B", "b")
	updatedB.Personal = "changed"

	res := Merge([]BuiltRecord{{Record: updatedB}, {Record: rec("C", "c")}}, existing)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "B", res.Records[0].ID)
	assert.Equal(t, "changed", res.Records[0].Personal)
	assert.Equal(t, "C", res.Records[1].ID)
	assert.Equal(t, []string{"C"}, res.Added)
	assert.Equal(t, []string{"B"}, res.Updated)
	assert.Equal(t, []string{"A"}, res.Removed)
}

func TestMergeCarriesIDByTitle(t *testing.T) {
	existing := []internal.PersonalRecord{rec("personal-100-0", "Hello")}
	res := Merge([]BuiltRecord{
		{Record: rec("personal-200-0", "Hello"), Synthesized: true},
		{Record: rec("personal-200-1", "New"), Synthesized: true},
	}, existing)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "personal-100-0", res.Records[0].ID)
	assert.Equal(t, "personal-200-1", res.Records[1].ID)
	assert.Empty(t, res.Updated)
	assert.Equal(t, []string{"personal-200-1"}, res.Added)
	assert.Empty(t, res.Removed)
}

func TestMergeCarryOverSkipsTakenID(t *testing.T) {
	existing := []internal.PersonalRecord{rec("explicit-1", "Hello")}
	res := Merge([]BuiltRecord{
		{Record: rec("explicit-1", "Other title")},
		{Record: rec("personal-200-1", "Hello"), Synthesized: true},
	}, existing)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "explicit-1", res.Records[0].ID)
	assert.Equal(t, "personal-200-1", res.Records[1].ID)
}

func TestMergeEmptyBatchClearsFile(t *testing.T) {
	res := Merge(nil, []internal.PersonalRecord{rec("A", "a")})
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, []string{"A"}, res.Removed)
}

func TestUpsert(t *testing.T) {
	existing := []internal.PersonalRecord{rec("A", "a"), rec("B", "b")}

	out, replaced := Upsert(existing, BuiltRecord{Record: rec("B2", "b")})
	assert.True(t, replaced)
	assert.Equal(t, "B2", out[1].ID)
	assert.Equal(t, "B", existing[1].ID)

	out, replaced = Upsert(existing, BuiltRecord{Record: rec("personal-9-0", "b"), Synthesized: true})
	assert.True(t, replaced)
	assert.Equal(t, "B", out[1].ID)

	out, replaced = Upsert(existing, BuiltRecord{Record: rec("C", "c")})
	assert.False(t, replaced)
	require.Len(t, out, 3)
	assert.Equal(t, "C", out[2].ID)
}
