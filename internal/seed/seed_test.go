package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func fixedNow() time.Time { return time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC) }

func TestGeneratorDeterministic(t *testing.T) {
	a := New(DefaultSeed, fixedNow).Cases(DefaultCount)
	b := New(DefaultSeed, fixedNow).Cases(DefaultCount)
	assert.Equal(t, a, b)

	c := New(DefaultSeed+1, fixedNow).Cases(DefaultCount)
	assert.NotEqual(t, a, c)
}

func TestGeneratorShape(t *testing.T) {
	got := New(DefaultSeed, fixedNow).Cases(DefaultCount)
	require.Len(t, got, DefaultCount)

	for _, c := range got {
		assert.Zero(t, c.ID)
		assert.NotEmpty(t, c.PatientName)
		assert.Regexp(t, `^[A-Z][a-z]+ [A-Z]\.$`, c.PatientName)
		assert.Contains(t, procedures, c.Procedure)

		parsed, err := types.ParseStatus(string(c.Status))
		require.NoError(t, err)
		assert.Equal(t, parsed, c.Status)

		assert.Equal(t, time.UTC, c.LastUpdatedUTC.Location())
		assert.False(t, c.LastUpdatedUTC.After(fixedNow()))
		assert.True(t, c.LastUpdatedUTC.After(fixedNow().Add(-maxAge-time.Minute)))
	}
}

func TestDefault(t *testing.T) {
	got := Default(fixedNow)
	assert.Len(t, got, DefaultCount)
	assert.Equal(t, New(DefaultSeed, fixedNow).Cases(DefaultCount), got)
}
