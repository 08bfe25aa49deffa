// Package memory provides an in-memory Store for tests and examples.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/label-store/pkg/labelstore"
)

// Backend is an in-memory implementation of the labelstore.Store interface
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
	modified     map[string]time.Time
}

// New creates a new in-memory storage backend
func New() labelstore.Store {
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		modified:     make(map[string]time.Time),
	}
}

func notFound(op, key string) error {
	return &labelstore.StorageError{Backend: "memory", Key: key, Op: op, Err: labelstore.ErrObjectNotFound}
}

// Get opens an object for reading
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, notFound("get", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put writes an object
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return &labelstore.StorageError{Backend: "memory", Key: key, Op: "put", Err: err}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	b.contentTypes[key] = contentType
	b.modified[key] = time.Now()
	return nil
}

// Copy duplicates an object under a new key
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, exists := b.objects[srcKey]
	if !exists {
		return notFound("copy", srcKey)
	}
	b.objects[dstKey] = append([]byte(nil), data...)
	b.contentTypes[dstKey] = b.contentTypes[srcKey]
	b.modified[dstKey] = time.Now()
	return nil
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return notFound("delete", key)
	}
	delete(b.objects, key)
	delete(b.contentTypes, key)
	delete(b.modified, key)
	return nil
}

// List returns objects under prefix in lexicographic key order. With
// delimiter "/" only keys at the immediate level are returned.
func (b *Backend) List(ctx context.Context, prefix, delimiter string) ([]labelstore.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var infos []labelstore.ObjectInfo
	for key, data := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if delimiter != "" && strings.Contains(key[len(prefix):], delimiter) {
			continue
		}
		infos = append(infos, labelstore.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			ContentType:  b.contentTypes[key],
			LastModified: b.modified[key],
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Stat retrieves object metadata without reading the body
func (b *Backend) Stat(ctx context.Context, key string) (*labelstore.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, notFound("stat", key)
	}
	return &labelstore.ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  b.contentTypes[key],
		LastModified: b.modified[key],
	}, nil
}

// HeadBucket always succeeds for the in-memory backend
func (b *Backend) HeadBucket(ctx context.Context) error {
	return nil
}
