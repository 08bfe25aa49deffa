// Package category resolves annotation labels to two-level storage
// categories. Resolution consults an exact label table loaded from a CSV
// source, then a fixed numeric-prefix fallback, and degrades to the
// unclassified marker when no label matches either.
package category

// Unclassified is the directory marker used when no label classifies a file.
const Unclassified = "未分类"

// Info is a resolved category pair. An empty Category2 denotes the
// single-level unclassified form; every CSV-sourced entry carries both
// levels.
type Info struct {
	Category1 string `json:"category1"`
	Category2 string `json:"category2"`
}

// Default returns the flat unclassified marker substituted when resolution
// yields nothing.
func Default() Info {
	return Info{Category1: Unclassified}
}

// prefixCategories maps the leading 3-digit label code to a discipline-level
// category. Consulted only when a label has no exact table entry.
var prefixCategories = map[string]string{
	"010": "设备-发电",
	"020": "设备-输电",
	"021": "设备-输电",
	"030": "设备-变电",
	"040": "设备-配电",
	"050": "作业环境",
}
