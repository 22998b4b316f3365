package sqlstore

import (
	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/caseseam/internal/query"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

const table = "cases"

// caseColumns is the scan order of scanCase.
var caseColumns = []string{"id", "patient_name", "procedure_name", "status", "last_updated_utc"}

var foldedColumns = []string{"patient_name_folded", "procedure_folded", "status_folded"}

// builder produces the SQL for every statement a Store runs.
type builder struct {
	d  Dialect
	sq squirrel.StatementBuilderType
}

func newBuilder(d Dialect) builder {
	return builder{d: d, sq: d.builder()}
}

// match returns the search predicate for q, or nil when q has no term.
func (b builder) match(q types.ListQuery) squirrel.Sqlizer {
	term := query.Term(q.Search)
	if term == "" {
		return nil
	}
	or := squirrel.Or{}
	for _, col := range foldedColumns {
		or = append(or, b.d.contains(col, term))
	}
	return or
}

func (b builder) count(q types.ListQuery) (string, []any, error) {
	sel := b.sq.Select("COUNT(*)").From(table)
	if m := b.match(q); m != nil {
		sel = sel.Where(m)
	}
	return sel.ToSql()
}

func (b builder) page(q types.ListQuery) (string, []any, error) {
	sel := b.sq.Select(caseColumns...).From(table)
	if m := b.match(q); m != nil {
		sel = sel.Where(m)
	}
	return sel.
		OrderBy("last_updated_utc DESC", "id ASC").
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset())).
		ToSql()
}

func (b builder) lastUpdated(id int64) (string, []any, error) {
	sel := b.sq.Select("last_updated_utc").From(table).Where(squirrel.Eq{"id": id})
	if b.d.lockRow != "" {
		sel = sel.Suffix(b.d.lockRow)
	}
	return sel.ToSql()
}

func (b builder) setStatus(id int64, st types.Status, ts string) (string, []any, error) {
	return b.sq.Update(table).
		Set("status", string(st)).
		Set("status_folded", query.Fold(string(st))).
		Set("last_updated_utc", ts).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, patient_name, procedure_name, status, last_updated_utc").
		ToSql()
}

func (b builder) insert(c types.Case) (string, []any, error) {
	return b.sq.Insert(table).
		Columns("patient_name", "procedure_name", "status", "last_updated_utc",
			"patient_name_folded", "procedure_folded", "status_folded").
		Values(c.PatientName, c.Procedure, string(c.Status), formatTime(c.LastUpdatedUTC),
			query.Fold(c.PatientName), query.Fold(c.Procedure), query.Fold(string(c.Status))).
		ToSql()
}
