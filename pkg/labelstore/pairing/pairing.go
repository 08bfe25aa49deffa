// Package pairing turns bucket listings into image/metadata file pairs.
// A listing can come from a saved export (JSON array or one JSON object
// per line) or from a live bucket scan.
package pairing

import (
	"encoding/json"
	"path"
	"strings"
	"time"

	"github.com/tendant/label-store/pkg/labelstore/objectkey"
)

// Entry is one object from a listing. Key always holds the decoded form
// used for path arithmetic; OriginalKey is set only for percent-encoded
// root-level objects and holds the literal stored key needed for reads.
type Entry struct {
	Key          string     `json:"key"`
	OriginalKey  string     `json:"original_key,omitempty"`
	Size         int64      `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// FilePair is an image object together with its companion metadata JSON.
type FilePair struct {
	ImagePath         string
	JSONPath          string
	OriginalImagePath string
	OriginalJSONPath  string
}

// ParseListing reads a listing from text. Text starting with "[" is
// parsed as a single JSON array; if that fails, or for any other text,
// each non-blank line is parsed as one JSON object and lines that do
// not parse are dropped.
func ParseListing(text string) []Entry {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		var entries []Entry
		if err := json.Unmarshal([]byte(trimmed), &entries); err == nil {
			return entries
		}
	}

	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// FilterNonCompliant keeps only entries that need migrating. Entries
// whose key is already canonical are dropped, and percent-encoded
// root-level keys are decoded with the literal key preserved in
// OriginalKey. Entries that already carry an OriginalKey are kept
// untouched.
func FilterNonCompliant(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.OriginalKey != "" {
			out = append(out, e)
			continue
		}
		if decoded, ok := objectkey.DecodeEncodedRoot(e.Key); ok {
			e.OriginalKey = e.Key
			e.Key = decoded
			out = append(out, e)
			continue
		}
		if objectkey.IsValid(e.Key) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Separate partitions entries into image objects and metadata JSON
// objects by extension. Entries matching neither are dropped.
func Separate(entries []Entry) (images, jsons []Entry) {
	for _, e := range entries {
		switch {
		case objectkey.IsImageKey(e.Key):
			images = append(images, e)
		case objectkey.IsJSONKey(e.Key):
			jsons = append(jsons, e)
		}
	}
	return images, jsons
}

// MatchPairs joins each image with its companion JSON. Two naming
// conventions are tried in order: the image key with its extension
// replaced by .json, then the full image key with .json appended.
// Images with no companion under either convention are dropped.
func MatchPairs(images, jsons []Entry) []FilePair {
	byKey := make(map[string]Entry, len(jsons))
	for _, j := range jsons {
		byKey[j.Key] = j
	}

	var pairs []FilePair
	for _, img := range images {
		stem := strings.TrimSuffix(img.Key, path.Ext(img.Key))
		for _, candidate := range []string{stem + ".json", img.Key + ".json"} {
			j, ok := byKey[candidate]
			if !ok {
				continue
			}
			pairs = append(pairs, FilePair{
				ImagePath:         img.Key,
				JSONPath:          j.Key,
				OriginalImagePath: img.OriginalKey,
				OriginalJSONPath:  j.OriginalKey,
			})
			break
		}
	}
	return pairs
}
