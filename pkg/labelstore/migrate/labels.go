package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/tendant/label-store/pkg/labelstore/category"
)

// annotationDoc covers the three label-bearing shapes a metadata JSON
// can take. Fields outside these shapes are ignored.
type annotationDoc struct {
	Labels      []string     `json:"labels"`
	Annotations []annotation `json:"annotations"`
	LabelIDs    []int64      `json:"labelIds"`
}

type annotation struct {
	Result []annotationResult `json:"result"`
}

type annotationResult struct {
	Value annotationValue `json:"value"`
}

type annotationValue struct {
	RectangleLabels []string `json:"rectanglelabels"`
}

// ExtractLabels pulls labels out of a metadata JSON document. The first
// non-empty source wins: a direct labels array, then rectangle labels
// collected across all annotations (deduplicated), then numeric label
// IDs translated through the ID table.
func ExtractLabels(data []byte, ids category.IDTable) ([]string, error) {
	var doc annotationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	if len(doc.Labels) > 0 {
		return doc.Labels, nil
	}

	seen := make(map[string]bool)
	var labels []string
	for _, a := range doc.Annotations {
		for _, r := range a.Result {
			for _, label := range r.Value.RectangleLabels {
				if seen[label] {
					continue
				}
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}
	if len(labels) > 0 {
		return labels, nil
	}

	return ids.Translate(doc.LabelIDs), nil
}
