package pairing

import (
	"context"
	"fmt"

	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/objectkey"
)

// Scanner walks a live bucket and produces file pairs without needing a
// saved listing.
type Scanner struct {
	store labelstore.Store
}

// NewScanner creates a Scanner over the given store.
func NewScanner(store labelstore.Store) *Scanner {
	return &Scanner{store: store}
}

// ScanNonCompliant lists every object under each storage type prefix
// and keeps the ones not already at a canonical key. Root-level objects
// with percent-encoded separators are picked up by a separate
// non-recursive listing and carried with both their decoded and literal
// keys. The combined set is paired by the usual naming conventions.
func (s *Scanner) ScanNonCompliant(ctx context.Context) ([]FilePair, error) {
	var entries []Entry
	for _, st := range labelstore.StorageTypes() {
		infos, err := s.store.List(ctx, string(st)+"/", "")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s objects: %w", st, err)
		}
		for _, info := range infos {
			if objectkey.IsValid(info.Key) {
				continue
			}
			entries = append(entries, entryFromInfo(info))
		}
	}

	rootInfos, err := s.store.List(ctx, "", "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list root objects: %w", err)
	}
	for _, info := range rootInfos {
		decoded, ok := objectkey.DecodeEncodedRoot(info.Key)
		if !ok {
			continue
		}
		e := entryFromInfo(info)
		e.OriginalKey = info.Key
		e.Key = decoded
		entries = append(entries, e)
	}

	images, jsons := Separate(entries)
	return MatchPairs(images, jsons), nil
}

// ScanUnclassified keeps only pairs sitting under the two-segment
// unclassified marker, the input set for a reclassification run.
func (s *Scanner) ScanUnclassified(ctx context.Context) ([]FilePair, error) {
	var entries []Entry
	for _, st := range labelstore.StorageTypes() {
		infos, err := s.store.List(ctx, string(st)+"/", "")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s objects: %w", st, err)
		}
		for _, info := range infos {
			if !isUnclassifiedKey(info.Key) {
				continue
			}
			entries = append(entries, entryFromInfo(info))
		}
	}

	images, jsons := Separate(entries)
	return MatchPairs(images, jsons), nil
}

func isUnclassifiedKey(key string) bool {
	if !objectkey.IsValid(key) {
		return false
	}
	parsed := objectkey.ParseExisting(key)
	return parsed.Category1 == category.Unclassified && parsed.Category2 == category.Unclassified
}

func entryFromInfo(info labelstore.ObjectInfo) Entry {
	e := Entry{Key: info.Key, Size: info.Size}
	if !info.LastModified.IsZero() {
		t := info.LastModified
		e.LastModified = &t
	}
	return e
}
