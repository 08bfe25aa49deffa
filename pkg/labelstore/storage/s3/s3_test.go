package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopySource(t *testing.T) {
	// plain separators survive as real slashes
	assert.Equal(t,
		"media/detection/2026-01/cat/sub/a.jpg",
		copySource("media", "detection/2026-01/cat/sub/a.jpg"))

	// a literal percent-encoded slash in the stored key must not be
	// decoded into a separator by the server
	assert.Equal(t,
		"media/detection%252F2024-01%252Fa.jpg",
		copySource("media", "detection%2F2024-01%2Fa.jpg"))

	assert.Equal(t,
		"media/detection/2026-01/%E6%9C%AA%E5%88%86%E7%B1%BB/%E6%9C%AA%E5%88%86%E7%B1%BB/a.jpg",
		copySource("media", "detection/2026-01/未分类/未分类/a.jpg"))
}
