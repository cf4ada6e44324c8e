package variance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAlignment is matched by every *AlignmentError.
	ErrAlignment = errors.New("periods are not aligned")

	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("periods do not share the same metrics")
)

// AlignmentError reports current-period weeks the reference period lacks.
type AlignmentError struct {
	Missing []string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%v: reference is missing weeks %s", ErrAlignment, quoteAll(e.Missing))
}

func (e *AlignmentError) Unwrap() error { return ErrAlignment }

// SchemaError reports metrics present in only one of the two periods.
type SchemaError struct {
	OnlyCurrent   []string
	OnlyReference []string
}

// Difference is the sorted symmetric difference of the two metric sets.
func (e *SchemaError) Difference() []string {
	out := make([]string, 0, len(e.OnlyCurrent)+len(e.OnlyReference))
	out = append(out, e.OnlyCurrent...)
	out = append(out, e.OnlyReference...)
	sort.Strings(out)
	return out
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: only in current %s, only in reference %s",
		ErrSchema, quoteAll(e.OnlyCurrent), quoteAll(e.OnlyReference))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func quoteAll(keys []string) string {
	q := make([]string, len(keys))
	for i, k := range keys {
		q[i] = fmt.Sprintf("%q", k)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
