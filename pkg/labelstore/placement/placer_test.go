package placement_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/objectkey"
	"github.com/tendant/label-store/pkg/labelstore/placement"
	"github.com/tendant/label-store/pkg/labelstore/storage/memory"
)

const tableCSV = `一级分类,二级分类,编号,名称,标签
设备-输电,杆塔,001,杆塔锈蚀,021_gt_hd_xs
设备-变电,表计,002,表计读数异常,030_bj_ds
`

func newPlacer(t *testing.T, store labelstore.Store) *placement.Placer {
	t.Helper()
	table, err := category.Load(strings.NewReader(tableCSV))
	require.NoError(t, err)
	return placement.New(store, table)
}

func month() string {
	return time.Now().Format("2006-01")
}

func readAll(t *testing.T, store labelstore.Store, key string) string {
	t.Helper()
	rc, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestPlaceSingleCategory(t *testing.T) {
	store := memory.New()
	placer := newPlacer(t, store)

	result, err := placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeDetection,
		FileName:    "shot.jpg",
		Data:        []byte("img-bytes"),
		MimeType:    "image/jpeg",
		Metadata:    []byte(`{"labels":["021_gt_hd_xs"]}`),
		Labels:      []string{"021_gt_hd_xs"},
	})
	require.NoError(t, err)

	wantBase := "detection/" + month() + "/设备-输电/杆塔"
	assert.Equal(t, wantBase+"/shot.jpg", result.PrimaryPath)
	assert.Equal(t, wantBase+"/shot.json", result.MetadataPath)
	assert.Nil(t, result.AllPaths)

	assert.True(t, objectkey.IsValid(result.PrimaryPath))
	assert.True(t, objectkey.IsValid(result.MetadataPath))
	assert.Equal(t, "img-bytes", readAll(t, store, result.PrimaryPath))
	assert.Equal(t, `{"labels":["021_gt_hd_xs"]}`, readAll(t, store, result.MetadataPath))
}

func TestPlaceWithoutLabels(t *testing.T) {
	store := memory.New()
	placer := newPlacer(t, store)

	result, err := placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeClassify,
		FileName:    "shot.png",
		Data:        []byte("x"),
	})
	require.NoError(t, err)

	wantBase := "classify/" + month() + "/未分类/未分类"
	assert.Equal(t, wantBase+"/shot.png", result.PrimaryPath)
	assert.True(t, objectkey.IsValid(result.PrimaryPath))

	// missing metadata still produces a companion object
	assert.Equal(t, "{}", readAll(t, store, wantBase+"/shot.json"))
}

func TestPlaceFansOutAcrossCategories(t *testing.T) {
	store := memory.New()
	placer := newPlacer(t, store)

	result, err := placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeDetection,
		FileName:    "multi.jpg",
		Data:        []byte("x"),
		Labels:      []string{"021_gt_hd_xs", "030_bj_ds"},
	})
	require.NoError(t, err)

	want := []string{
		"detection/" + month() + "/设备-输电/杆塔/multi.jpg",
		"detection/" + month() + "/设备-变电/表计/multi.jpg",
	}
	assert.Equal(t, want[0], result.PrimaryPath)
	assert.Equal(t, want, result.AllPaths)

	for _, p := range want {
		assert.Equal(t, "x", readAll(t, store, p))
	}
}

func TestPlaceStemWithoutExtension(t *testing.T) {
	store := memory.New()
	placer := newPlacer(t, store)

	result, err := placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeQAPair,
		FileName:    "bundle.tar.gz",
		Data:        []byte("x"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.MetadataPath, "/bundle.tar.json"))

	result, err = placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeQAPair,
		FileName:    "noext",
		Data:        []byte("x"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.MetadataPath, "/noext.json"))
}

func TestPlaceValidatesRequest(t *testing.T) {
	placer := newPlacer(t, memory.New())

	_, err := placer.Place(context.Background(), placement.Request{
		StorageType: "video",
		FileName:    "a.jpg",
	})
	assert.Error(t, err)

	_, err = placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeDetection,
	})
	assert.Error(t, err)
}

// failKeyStore fails puts for keys containing a marker substring.
type failKeyStore struct {
	labelstore.Store
	marker string
}

func (s *failKeyStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if strings.Contains(key, s.marker) {
		return fmt.Errorf("induced put failure for %s", key)
	}
	return s.Store.Put(ctx, key, r, contentType)
}

func TestPlaceAbortsWithoutRollback(t *testing.T) {
	inner := memory.New()
	store := &failKeyStore{Store: inner, marker: "设备-变电"}
	placer := newPlacer(t, store)

	_, err := placer.Place(context.Background(), placement.Request{
		StorageType: labelstore.StorageTypeDetection,
		FileName:    "multi.jpg",
		Data:        []byte("x"),
		Labels:      []string{"021_gt_hd_xs", "030_bj_ds"},
	})
	require.Error(t, err)

	// the first category's writes stay in place
	firstBase := "detection/" + month() + "/设备-输电/杆塔"
	assert.Equal(t, "x", readAll(t, inner, firstBase+"/multi.jpg"))
	assert.Equal(t, "{}", readAll(t, inner, firstBase+"/multi.json"))

	// nothing landed under the failed category
	infos, err := inner.List(context.Background(), "detection/"+month()+"/设备-变电/", "")
	require.NoError(t, err)
	assert.Empty(t, infos)
}
