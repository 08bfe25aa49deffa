package pairing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/label-store/pkg/labelstore/pairing"
)

func TestParseListingArray(t *testing.T) {
	const text = `[
		{"key": "detection/2026-01-22/a.jpg", "size": 1024},
		{"key": "detection/2026-01-22/a.json"},
		{"key": "detection/2024-01/b.jpg", "original_key": "detection%2F2024-01%2Fb.jpg"}
	]`

	entries := pairing.ParseListing(text)
	require.Len(t, entries, 3)
	assert.Equal(t, "detection/2026-01-22/a.jpg", entries[0].Key)
	assert.Equal(t, int64(1024), entries[0].Size)
	assert.Equal(t, "detection%2F2024-01%2Fb.jpg", entries[2].OriginalKey)
}

func TestParseListingLines(t *testing.T) {
	const text = `{"key": "detection/2026-01-22/a.jpg"}

{"key": "detection/2026-01-22/a.json"}
this line is not json
{"key": "detection/2026-01-22/b.png"}
`

	entries := pairing.ParseListing(text)
	require.Len(t, entries, 3)
	assert.Equal(t, "detection/2026-01-22/b.png", entries[2].Key)
}

func TestParseListingArrayAndLinesAgree(t *testing.T) {
	const array = `[{"key": "detection/2026-01-22/a.jpg"}, {"key": "detection/2026-01-22/a.json"}]`
	const lines = `{"key": "detection/2026-01-22/a.jpg"}
{"key": "detection/2026-01-22/a.json"}`

	fromArray := pairs(pairing.ParseListing(array))
	fromLines := pairs(pairing.ParseListing(lines))
	assert.Equal(t, fromArray, fromLines)
	require.Len(t, fromArray, 1)
}

func TestParseListingBadArrayFallsBackToLines(t *testing.T) {
	// looks like an array but is cut off, so each line is tried instead
	const text = `[{"key": "detection/2026-01-22/a.jpg"},
{"key": "detection/2026-01-22/a.json"}`

	entries := pairing.ParseListing(text)
	require.Len(t, entries, 1)
	assert.Equal(t, "detection/2026-01-22/a.json", entries[0].Key)
}

func TestSeparate(t *testing.T) {
	entries := []pairing.Entry{
		{Key: "a/b/c.jpg"},
		{Key: "a/b/c.json"},
		{Key: "a/b/c.PNG"},
		{Key: "a/b/readme.txt"},
		{Key: "a/b/noext"},
	}

	images, jsons := pairing.Separate(entries)
	assert.Equal(t, []string{"a/b/c.jpg", "a/b/c.PNG"}, keys(images))
	assert.Equal(t, []string{"a/b/c.json"}, keys(jsons))
}

func TestMatchPairs(t *testing.T) {
	images := []pairing.Entry{
		{Key: "d/1/a.jpg"},
		{Key: "d/1/b.jpg"},
		{Key: "d/1/orphan.jpg"},
	}
	jsons := []pairing.Entry{
		{Key: "d/1/a.json"},
		{Key: "d/1/b.jpg.json"},
	}

	got := pairing.MatchPairs(images, jsons)
	require.Len(t, got, 2)
	assert.Equal(t, pairing.FilePair{ImagePath: "d/1/a.jpg", JSONPath: "d/1/a.json"}, got[0])
	assert.Equal(t, pairing.FilePair{ImagePath: "d/1/b.jpg", JSONPath: "d/1/b.jpg.json"}, got[1])
}

func TestMatchPairsPrefersSiblingStem(t *testing.T) {
	images := []pairing.Entry{{Key: "d/1/a.jpg"}}
	jsons := []pairing.Entry{
		{Key: "d/1/a.jpg.json"},
		{Key: "d/1/a.json"},
	}

	got := pairing.MatchPairs(images, jsons)
	require.Len(t, got, 1)
	assert.Equal(t, "d/1/a.json", got[0].JSONPath)
}

func TestMatchPairsCarriesOriginalKeys(t *testing.T) {
	images := []pairing.Entry{
		{Key: "detection/2024-01/a.jpg", OriginalKey: "detection%2F2024-01%2Fa.jpg"},
	}
	jsons := []pairing.Entry{
		{Key: "detection/2024-01/a.json", OriginalKey: "detection%2F2024-01%2Fa.json"},
	}

	got := pairing.MatchPairs(images, jsons)
	require.Len(t, got, 1)
	assert.Equal(t, "detection%2F2024-01%2Fa.jpg", got[0].OriginalImagePath)
	assert.Equal(t, "detection%2F2024-01%2Fa.json", got[0].OriginalJSONPath)
}

func pairs(entries []pairing.Entry) []pairing.FilePair {
	images, jsons := pairing.Separate(entries)
	return pairing.MatchPairs(images, jsons)
}

func keys(entries []pairing.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
