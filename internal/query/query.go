// Package query holds the search, ordering, and paging rules every case
// store applies. Apply runs them over an in-memory slice; SQL stores
// reproduce them with folded shadow columns and the same ORDER BY.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Fold returns the case-folded form of s used for every search comparison.
// A Caser holds state, so each call builds its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Term trims and folds a raw search string. An empty result means no
// filter.
func Term(search string) string {
	return Fold(strings.TrimSpace(search))
}

// Matches reports whether c matches the folded term. The empty term
// matches every case.
func Matches(c types.Case, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(Fold(c.PatientName), term) ||
		strings.Contains(Fold(c.Procedure), term) ||
		strings.Contains(Fold(string(c.Status)), term)
}

// Less orders cases most recently updated first, then by ascending id.
func Less(a, b types.Case) bool {
	if !a.LastUpdatedUTC.Equal(b.LastUpdatedUTC) {
		return a.LastUpdatedUTC.After(b.LastUpdatedUTC)
	}
	return a.ID < b.ID
}

// Apply filters, orders, and pages all. It does not validate q; callers
// check q.Validate first. all is not modified.
func Apply(all []types.Case, q types.ListQuery) types.PagedResult {
	term := Term(q.Search)

	matched := make([]types.Case, 0, len(all))
	for _, c := range all {
		if Matches(c, term) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return Less(matched[i], matched[j]) })

	return types.PagedResult{
		Items:    Page(matched, q),
		Total:    len(matched),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// Page returns the window of sorted that q selects, never nil.
func Page(sorted []types.Case, q types.ListQuery) []types.Case {
	start := q.Offset()
	if start < 0 || start >= len(sorted) {
		return []types.Case{}
	}
	end := min(start+q.PageSize, len(sorted))
	out := make([]types.Case, end-start)
	copy(out, sorted[start:end])
	return out
}
