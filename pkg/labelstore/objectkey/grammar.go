// Package objectkey defines the object key grammar: the canonical
// 5-segment layout, the legacy layouts still found in old buckets, and
// helpers for deriving a canonical destination key from a legacy one.
package objectkey

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/tendant/label-store/pkg/labelstore"
)

// Violation classifies how an object key relates to the canonical
// layout. Exactly one applies to any given key.
type Violation string

const (
	// ViolationNone marks a key already in the canonical 5-segment form.
	ViolationNone Violation = "valid"
	// ViolationOldTaskID marks the legacy {type}/{date}/{taskid}/{file} form.
	ViolationOldTaskID Violation = "old-taskid"
	// ViolationOldFlat marks the legacy {type}/{date}/{file} form.
	ViolationOldFlat Violation = "old-flat"
	// ViolationEncodedRoot marks a root-level key whose separators were
	// stored percent-encoded, so the whole path lives in one segment.
	ViolationEncodedRoot Violation = "url-encoded-root"
	// ViolationUnknown marks every key no other rule accepts.
	ViolationUnknown Violation = "unknown"
)

var (
	monthPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	taskIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// IsImageKey reports whether the key's extension is a recognized image
// extension. Matching is case-insensitive.
func IsImageKey(key string) bool {
	return imageExtensions[strings.ToLower(path.Ext(key))]
}

// IsJSONKey reports whether the key names a metadata JSON object.
func IsJSONKey(key string) bool {
	return strings.EqualFold(path.Ext(key), ".json")
}

// DecodeEncodedRoot reports whether key is a percent-encoded root-level
// key, and if so returns its decoded form. A key qualifies when it
// contains a literal "%2F" and decodes to a path starting with a known
// storage type segment.
func DecodeEncodedRoot(key string) (string, bool) {
	if !strings.Contains(key, "%2F") {
		return "", false
	}
	decoded, err := url.PathUnescape(key)
	if err != nil {
		return "", false
	}
	for _, st := range labelstore.StorageTypes() {
		if strings.HasPrefix(decoded, string(st)+"/") {
			return decoded, true
		}
	}
	return "", false
}

// Classify maps a key to its Violation. Rules are tested in priority
// order and the first match wins, so the result is total and unique.
func Classify(key string) Violation {
	if _, ok := DecodeEncodedRoot(key); ok {
		return ViolationEncodedRoot
	}

	segs := strings.Split(key, "/")
	switch len(segs) {
	case 5:
		if labelstore.IsStorageType(segs[0]) &&
			monthPattern.MatchString(segs[1]) &&
			segs[2] != "" && segs[3] != "" && segs[4] != "" {
			return ViolationNone
		}
	case 4:
		if labelstore.IsStorageType(segs[0]) &&
			datePattern.MatchString(segs[1]) &&
			taskIDPattern.MatchString(segs[2]) &&
			segs[3] != "" {
			return ViolationOldTaskID
		}
	case 3:
		if labelstore.IsStorageType(segs[0]) &&
			datePattern.MatchString(segs[1]) &&
			(IsImageKey(segs[2]) || IsJSONKey(segs[2])) {
			return ViolationOldFlat
		}
	}
	return ViolationUnknown
}

// IsValid reports whether the key is already canonical.
func IsValid(key string) bool {
	return Classify(key) == ViolationNone
}

// ParsedKey holds the segments recovered from an existing key. Fields
// that the key's shape does not carry are left empty.
type ParsedKey struct {
	Type      string
	Date      string
	Category1 string
	Category2 string
	TaskID    string
	Filename  string
}

// ParseExisting splits a key into its named segments by segment count.
// Five segments fill both category levels, four fill either the task ID
// (32 lowercase hex) or a single category level, three fill only
// type/date/filename. Anything else, including empty input, yields an
// empty result.
func ParseExisting(key string) ParsedKey {
	var parsed ParsedKey
	if key == "" {
		return parsed
	}

	segs := strings.Split(key, "/")
	switch len(segs) {
	case 5:
		parsed.Type = segs[0]
		parsed.Date = segs[1]
		parsed.Category1 = segs[2]
		parsed.Category2 = segs[3]
		parsed.Filename = segs[4]
	case 4:
		parsed.Type = segs[0]
		parsed.Date = segs[1]
		if taskIDPattern.MatchString(segs[2]) {
			parsed.TaskID = segs[2]
		} else {
			parsed.Category1 = segs[2]
		}
		parsed.Filename = segs[3]
	case 3:
		parsed.Type = segs[0]
		parsed.Date = segs[1]
		parsed.Filename = segs[2]
	}
	return parsed
}
