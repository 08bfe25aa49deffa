package pairing_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/pairing"
	"github.com/tendant/label-store/pkg/labelstore/storage/memory"
)

func seed(t *testing.T, store labelstore.Store, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, store.Put(context.Background(), key, strings.NewReader("x"), ""))
	}
}

func TestScanNonCompliant(t *testing.T) {
	store := memory.New()
	seed(t, store,
		// already canonical, must not be touched
		"detection/2026-01/设备-输电/杆塔/ok.jpg",
		"detection/2026-01/设备-输电/杆塔/ok.json",
		// legacy flat layout
		"detection/2026-01-22/flat.jpg",
		"detection/2026-01-22/flat.json",
		// legacy task-id layout with a double-extension companion
		"classify/2026-01-22/0123456789abcdef0123456789abcdef/task.jpg",
		"classify/2026-01-22/0123456789abcdef0123456789abcdef/task.jpg.json",
		// image with no companion
		"detection/2026-01-22/orphan.jpg",
		// percent-encoded root-level pair
		"detection%2F2024-01%2F未分类%2F未分类%2Fenc.jpg",
		"detection%2F2024-01%2F未分类%2F未分类%2Fenc.json",
		// root-level noise
		"README.md",
	)

	pairs, err := pairing.NewScanner(store).ScanNonCompliant(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []pairing.FilePair{
		{
			ImagePath: "detection/2026-01-22/flat.jpg",
			JSONPath:  "detection/2026-01-22/flat.json",
		},
		{
			ImagePath: "classify/2026-01-22/0123456789abcdef0123456789abcdef/task.jpg",
			JSONPath:  "classify/2026-01-22/0123456789abcdef0123456789abcdef/task.jpg.json",
		},
		{
			ImagePath:         "detection/2024-01/未分类/未分类/enc.jpg",
			JSONPath:          "detection/2024-01/未分类/未分类/enc.json",
			OriginalImagePath: "detection%2F2024-01%2F未分类%2F未分类%2Fenc.jpg",
			OriginalJSONPath:  "detection%2F2024-01%2F未分类%2F未分类%2Fenc.json",
		},
	}, pairs)
}

func TestScanUnclassified(t *testing.T) {
	store := memory.New()
	seed(t, store,
		"detection/2026-01/未分类/未分类/a.jpg",
		"detection/2026-01/未分类/未分类/a.json",
		// classified pairs are out of scope for reclassification
		"detection/2026-01/设备-输电/杆塔/b.jpg",
		"detection/2026-01/设备-输电/杆塔/b.json",
		// non-canonical keys are the migration run's job, not reclassify's
		"detection/2026-01-22/flat.jpg",
		"detection/2026-01-22/flat.json",
	)

	pairs, err := pairing.NewScanner(store).ScanUnclassified(context.Background())
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, pairing.FilePair{
		ImagePath: "detection/2026-01/未分类/未分类/a.jpg",
		JSONPath:  "detection/2026-01/未分类/未分类/a.json",
	}, pairs[0])
}
