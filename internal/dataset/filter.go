package dataset

import (
	"sort"
	"strings"

	"fieldops-insights-go/internal/types"
)

// Filter selects interventions by technician and provider.
// An empty selection keeps everything for that column.
//
// Search is a free-text query over every field of the row: each of its words
// must appear, case-insensitively, in at least one field.
type Filter struct {
	Technicians []string `json:"technicians,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	Search      string   `json:"search,omitempty"`
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []types.Intervention) []types.Intervention {
	techs := toSet(f.Technicians)
	provs := toSet(f.Providers)
	words := strings.Fields(strings.ToLower(f.Search))
	out := make([]types.Intervention, 0, len(records))
	for _, r := range records {
		if techs != nil && !techs[r.Technician] {
			continue
		}
		if provs != nil && !provs[r.Provider] {
			continue
		}
		if len(words) > 0 && !matches(r, words) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r types.Intervention, words []string) bool {
	for _, w := range words {
		found := false
		for _, v := range r.Fields {
			if strings.Contains(strings.ToLower(v), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]bool, len(vals))
	for _, v := range vals {
		s[v] = true
	}
	return s
}

// distinct returns the sorted non-empty values picked from records.
func distinct(records []types.Intervention, pick func(types.Intervention) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		v := pick(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
