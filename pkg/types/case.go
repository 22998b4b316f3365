package types

import (
	"math"
	"time"
)

// Paging limits for ListQuery.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TimestampResolution is the precision at which every backend stores and
// compares LastUpdatedUTC.
const TimestampResolution = time.Microsecond

// Case is a patient procedure record with a workflow status.
type Case struct {
	ID             int64     `json:"id"`
	PatientName    string    `json:"patientName"`
	Procedure      string    `json:"procedure"`
	Status         Status    `json:"status"`
	LastUpdatedUTC time.Time `json:"lastUpdatedUtc"`
}

// ListQuery selects one page of cases. Search is matched as a
// case-insensitive substring of the patient name, procedure, or status;
// an empty or whitespace-only Search matches every case. Page is 1-based.
type ListQuery struct {
	Search   string `json:"search" schema:"search"`
	Page     int    `json:"page" schema:"page"`
	PageSize int    `json:"pageSize" schema:"pageSize"`
}

// Validate rejects a Page below 1 and a PageSize outside [1, MaxPageSize].
func (q ListQuery) Validate() error {
	if q.Page < 1 {
		return ErrInvalidPage
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// Offset returns the zero-based index of the first case on the page. An
// offset too large for int is reported as math.MaxInt, which is past the
// end of any collection.
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// PagedResult is one page of cases. Total counts every matching case
// before paging.
type PagedResult struct {
	Items    []Case `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Timestamp normalizes t to UTC at TimestampResolution.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampResolution)
}

// NextTimestamp returns the LastUpdatedUTC to record for an update made at
// now on a case last updated at prev. The result is strictly after prev,
// even if the clock reads earlier.
func NextTimestamp(prev, now time.Time) time.Time {
	next := Timestamp(now)
	if !next.After(prev) {
		next = Timestamp(prev).Add(TimestampResolution)
	}
	return next
}
