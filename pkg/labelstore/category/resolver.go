package category

import "regexp"

// source records where a label's category came from. A csv entry is a
// specific classification; a prefix entry is the generic placeholder for
// its discipline.
type source int

const (
	sourceCSV source = iota
	sourcePrefix
	sourceUnknown
)

type resolution struct {
	info Info
	src  source
}

// prefixPattern matches labels carrying a numeric discipline code:
// exactly three digits followed by an underscore.
var prefixPattern = regexp.MustCompile(`^[0-9]{3}_`)

// Resolve maps labels to categories, in input order.
//
// Each label resolves from the CSV table if an exact entry exists, else
// through the prefix fallback (Category2 forced to the unclassified
// placeholder), else not at all. When no label resolves, the single flat
// default is returned. Within one Category1, a csv-sourced entry suppresses
// the prefix-sourced placeholders, and duplicates collapse to their first
// occurrence. Empty input returns nil; the caller substitutes its own
// default.
func (t *Table) Resolve(labels []string) []Info {
	if len(labels) == 0 {
		return nil
	}

	resolved := make([]resolution, 0, len(labels))
	for _, label := range labels {
		resolved = append(resolved, t.resolveOne(label))
	}

	classifiable := false
	csvCat1 := make(map[string]bool)
	for _, r := range resolved {
		if r.src != sourceUnknown {
			classifiable = true
		}
		if r.src == sourceCSV {
			csvCat1[r.info.Category1] = true
		}
	}
	if !classifiable {
		return []Info{Default()}
	}

	var out []Info
	seen := make(map[Info]bool)
	for _, r := range resolved {
		if r.src == sourceUnknown {
			continue
		}
		if r.src == sourcePrefix && csvCat1[r.info.Category1] {
			// a specific classification exists for this discipline
			continue
		}
		if seen[r.info] {
			continue
		}
		seen[r.info] = true
		out = append(out, r.info)
	}
	return out
}

func (t *Table) resolveOne(label string) resolution {
	if info, ok := t.entries[label]; ok {
		return resolution{info: info, src: sourceCSV}
	}
	if prefixPattern.MatchString(label) {
		if cat1, ok := prefixCategories[label[:3]]; ok {
			return resolution{
				info: Info{Category1: cat1, Category2: Unclassified},
				src:  sourcePrefix,
			}
		}
	}
	return resolution{src: sourceUnknown}
}
