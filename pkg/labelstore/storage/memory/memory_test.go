package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/storage/memory"
)

func put(t *testing.T, store labelstore.Store, key, body string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), key, strings.NewReader(body), "application/octet-stream"))
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store, "detection/2026-01/a/b/c.jpg", "img-bytes")

	rc, err := store.Get(ctx, "detection/2026-01/a/b/c.jpg")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "img-bytes", string(data))
}

func TestGetMissing(t *testing.T) {
	store := memory.New()

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, labelstore.ErrObjectNotFound)

	var storageErr *labelstore.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "get", storageErr.Op)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store, "src.jpg", "payload")

	require.NoError(t, store.Copy(ctx, "src.jpg", "dst.jpg"))

	info, err := store.Stat(ctx, "dst.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), info.Size)

	// source still present, copy is not a move
	_, err = store.Stat(ctx, "src.jpg")
	assert.NoError(t, err)

	err = store.Copy(ctx, "missing.jpg", "anywhere.jpg")
	assert.ErrorIs(t, err, labelstore.ErrObjectNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store, "victim.jpg", "x")

	require.NoError(t, store.Delete(ctx, "victim.jpg"))
	_, err := store.Stat(ctx, "victim.jpg")
	assert.ErrorIs(t, err, labelstore.ErrObjectNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "victim.jpg"), labelstore.ErrObjectNotFound)
}

func TestListRecursive(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store, "detection/2026-01/a/b/c.jpg", "1")
	put(t, store, "detection/2026-01/a/b/c.json", "2")
	put(t, store, "classify/2026-01/a/b/d.jpg", "3")

	infos, err := store.List(ctx, "detection/", "")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "detection/2026-01/a/b/c.jpg", infos[0].Key)
	assert.Equal(t, "detection/2026-01/a/b/c.json", infos[1].Key)
}

func TestListWithDelimiter(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store, "root-object.jpg", "1")
	put(t, store, "detection%2F2024-01%2Fa.jpg", "2")
	put(t, store, "detection/2026-01/a/b/c.jpg", "3")

	infos, err := store.List(ctx, "", "/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "detection%2F2024-01%2Fa.jpg", infos[0].Key)
	assert.Equal(t, "root-object.jpg", infos[1].Key)
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, "a.jpg", strings.NewReader("12345"), "image/jpeg"))

	info, err := store.Stat(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)
	assert.False(t, info.LastModified.IsZero())
}

func TestHeadBucket(t *testing.T) {
	assert.NoError(t, memory.New().HeadBucket(context.Background()))
}
