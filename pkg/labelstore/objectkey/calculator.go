package objectkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tendant/label-store/pkg/labelstore/category"
)

var (
	dateStampPattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	monthStampPattern = regexp.MustCompile(`\d{4}-\d{2}`)
)

// ExtractType returns the first path segment after stripping one
// optional leading slash. A path with no slash is returned unchanged.
func ExtractType(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}

// ExtractMonth finds the month a path belongs to: the YYYY-MM prefix of
// the first full date in the path, else the first bare YYYY-MM stamp,
// else the current calendar month.
func ExtractMonth(p string) string {
	if d := dateStampPattern.FindString(p); d != "" {
		return d[:7]
	}
	if m := monthStampPattern.FindString(p); m != "" {
		return m
	}
	return time.Now().Format("2006-01")
}

// CalculateNewPath derives the canonical destination for oldPath under
// the given month and category. The result always has the full five
// segments; an empty category level becomes the unclassified marker.
func CalculateNewPath(oldPath, month string, cat category.Info) string {
	cat1 := cat.Category1
	if cat1 == "" {
		cat1 = category.Unclassified
	}
	cat2 := cat.Category2
	if cat2 == "" {
		cat2 = category.Unclassified
	}
	filename := oldPath[strings.LastIndex(oldPath, "/")+1:]
	return fmt.Sprintf("%s/%s/%s/%s/%s", ExtractType(oldPath), month, cat1, cat2, filename)
}

// IsCorrectLocation reports whether current already equals the computed
// destination. Empty strings never count as correct.
func IsCorrectLocation(current, computed string) bool {
	return current != "" && computed != "" && current == computed
}
