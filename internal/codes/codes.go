package codes

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"fieldops-insights-go/internal/types"
)

// Tokenize normalizes a free-text code field into individual codes.
// Commas and whitespace are interchangeable separators; runs of them count once.
func Tokenize(field string) []string {
	parts := strings.FieldsFunc(strings.ToUpper(field), isDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isDelimiter(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// Entry is one code of a distribution with its occurrence count.
type Entry struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Distribution maps normalized codes to occurrence counts.
// The zero value is an empty distribution.
type Distribution struct {
	counts map[string]int
	total  int
}

func (d *Distribution) add(code string) {
	if d.counts == nil {
		d.counts = map[string]int{}
	}
	d.counts[code]++
	d.total++
}

// Count returns how many times code occurred. The code is looked up as given.
func (d Distribution) Count(code string) int {
	return d.counts[code]
}

// Len is the number of distinct codes.
func (d Distribution) Len() int {
	return len(d.counts)
}

// Total is the sum of all counts.
func (d Distribution) Total() int {
	return d.total
}

// Codes returns the distinct codes in ascending order.
func (d Distribution) Codes() []string {
	keys := make([]string, 0, len(d.counts))
	for k := range d.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns the distribution in ascending code order.
func (d Distribution) Entries() []Entry {
	keys := d.Codes()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Code: k, Count: d.counts[k]}
	}
	return out
}

// Map returns a copy of the distribution as a plain map.
func (d Distribution) Map() map[string]int {
	out := make(map[string]int, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the distribution as an object; encoding/json sorts map keys,
// so the output is in ascending code order.
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// Count pools the billing and extra-work codes of every record into one distribution.
// A code present in both fields of the same record counts twice.
func Count(records []types.Intervention) Distribution {
	var d Distribution
	for _, r := range records {
		for _, c := range Tokenize(r.BillingCodes) {
			d.add(c)
		}
		for _, c := range Tokenize(r.ExtraWorkCodes) {
			d.add(c)
		}
	}
	return d
}

// Breakdown holds the per-column distributions next to the pooled one.
type Breakdown struct {
	Billing   Distribution `json:"billing"`
	ExtraWork Distribution `json:"extra_work"`
	Combined  Distribution `json:"combined"`
}

// CountBreakdown is Count with the two source columns also kept apart.
func CountBreakdown(records []types.Intervention) Breakdown {
	var b Breakdown
	for _, r := range records {
		for _, c := range Tokenize(r.BillingCodes) {
			b.Billing.add(c)
			b.Combined.add(c)
		}
		for _, c := range Tokenize(r.ExtraWorkCodes) {
			b.ExtraWork.add(c)
			b.Combined.add(c)
		}
	}
	return b
}
