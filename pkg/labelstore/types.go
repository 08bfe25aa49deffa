package labelstore

import (
	"time"

	"github.com/google/uuid"
)

// StorageType is the workflow kind a file belongs to. It appears as the
// first segment of every object key.
type StorageType string

// Storage type constants (typed).
const (
	StorageTypeDetection  StorageType = "detection"
	StorageTypeMultimodal StorageType = "multimodal"
	StorageTypeTextQA     StorageType = "text-qa"
	StorageTypeClassify   StorageType = "classify"
	StorageTypeQAPair     StorageType = "qa-pair"
)

// StorageTypes returns all storage types in a fixed order.
func StorageTypes() []StorageType {
	return []StorageType{
		StorageTypeDetection,
		StorageTypeMultimodal,
		StorageTypeTextQA,
		StorageTypeClassify,
		StorageTypeQAPair,
	}
}

// IsStorageType reports whether s is one of the known storage types.
func IsStorageType(s string) bool {
	switch StorageType(s) {
	case StorageTypeDetection, StorageTypeMultimodal, StorageTypeTextQA,
		StorageTypeClassify, StorageTypeQAPair:
		return true
	}
	return false
}

// ObjectInfo describes an object in storage as reported by List or Stat.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// IngestionRecord is the persisted trace of one placed file pair.
type IngestionRecord struct {
	ID           uuid.UUID `json:"id"`
	StorageType  string    `json:"storage_type"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	PrimaryPath  string    `json:"primary_path"`
	MetadataPath string    `json:"metadata_path"`
	AllPaths     []string  `json:"all_paths,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
