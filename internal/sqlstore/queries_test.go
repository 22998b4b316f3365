package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func TestBuilderPage(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    types.ListQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "sqlite without search",
			dialect: SQLite,
			query:   types.ListQuery{Search: "  ", Page: 3, PageSize: 10},
			wantSQL: "SELECT id, patient_name, procedure_name, status, last_updated_utc FROM cases " +
				"ORDER BY last_updated_utc DESC, id ASC LIMIT 10 OFFSET 20",
		},
		{
			name:    "sqlite with folded search",
			dialect: SQLite,
			query:   types.ListQuery{Search: " ANN ", Page: 1, PageSize: 5},
			wantSQL: "SELECT id, patient_name, procedure_name, status, last_updated_utc FROM cases " +
				"WHERE (instr(patient_name_folded, ?) > 0 OR instr(procedure_folded, ?) > 0 OR instr(status_folded, ?) > 0) " +
				"ORDER BY last_updated_utc DESC, id ASC LIMIT 5 OFFSET 0",
			wantArgs: []any{"ann", "ann", "ann"},
		},
		{
			name:    "postgres with folded search",
			dialect: Postgres,
			query:   types.ListQuery{Search: "Ct", Page: 2, PageSize: 1},
			wantSQL: "SELECT id, patient_name, procedure_name, status, last_updated_utc FROM cases " +
				"WHERE (strpos(patient_name_folded, $1) > 0 OR strpos(procedure_folded, $2) > 0 OR strpos(status_folded, $3) > 0) " +
				"ORDER BY last_updated_utc DESC, id ASC LIMIT 1 OFFSET 1",
			wantArgs: []any{"ct", "ct", "ct"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := newBuilder(tt.dialect).page(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestBuilderCount(t *testing.T) {
	sql, args, err := newBuilder(SQLite).count(types.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM cases", sql)
	assert.Empty(t, args)
}

func TestBuilderUpdate(t *testing.T) {
	t.Run("sqlite read has no row lock", func(t *testing.T) {
		sql, args, err := newBuilder(SQLite).lastUpdated(7)
		require.NoError(t, err)
		assert.Equal(t, "SELECT last_updated_utc FROM cases WHERE id = ?", sql)
		assert.Equal(t, []any{int64(7)}, args)
	})

	t.Run("postgres read locks the row", func(t *testing.T) {
		sql, _, err := newBuilder(Postgres).lastUpdated(7)
		require.NoError(t, err)
		assert.Equal(t, "SELECT last_updated_utc FROM cases WHERE id = $1 FOR UPDATE", sql)
	})

	t.Run("update writes folded status and returns the row", func(t *testing.T) {
		sql, args, err := newBuilder(Postgres).setStatus(7, types.StatusInProgress, "2026-01-01T00:00:00.000000Z")
		require.NoError(t, err)
		assert.Equal(t, "UPDATE cases SET status = $1, status_folded = $2, last_updated_utc = $3 WHERE id = $4 "+
			"RETURNING id, patient_name, procedure_name, status, last_updated_utc", sql)
		assert.Equal(t, []any{"InProgress", "inprogress", "2026-01-01T00:00:00.000000Z", int64(7)}, args)
	})
}
