package types

import "context"

// CaseGateway is the seam between callers and case storage. Every backend
// implements it with identical search, ordering, paging, and validation
// semantics, so callers cannot tell which backend they were given.
type CaseGateway interface {
	// ListCases returns one page of cases matching q.Search, most recently
	// updated first. Returns ErrInvalidPage or ErrInvalidPageSize before any
	// I/O when q is out of range. A page past the end is empty, not an error.
	ListCases(ctx context.Context, q ListQuery) (PagedResult, error)

	// UpdateStatus sets the status of case id and refreshes its
	// LastUpdatedUTC. Returns ErrStatusRequired or ErrInvalidStatus before
	// any I/O when status is not in the vocabulary, and ErrNotFound when no
	// case has that id.
	UpdateStatus(ctx context.Context, id int64, status string) (Case, error)
}
