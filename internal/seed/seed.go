// Package seed generates the synthetic demonstration cases that a store
// inserts when it bootstraps an empty collection.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// DefaultCount is the number of cases seeded into an empty store.
const DefaultCount = 30

// DefaultSeed fixes the generator so fresh stores get the same data shape.
const DefaultSeed = 123

// maxAge bounds how far in the past a seeded LastUpdatedUTC may fall.
const maxAge = 7 * 24 * time.Hour

var procedures = []string{"CT", "MRI", "X-Ray", "Ultrasound", "EKG", "Biopsy"}

var firstNames = []string{
	"Alex", "Sam", "Jordan", "Taylor", "Morgan",
	"Casey", "Riley", "Jamie", "Avery", "Quinn",
}

// Generator produces deterministic synthetic cases.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded with seed. now supplies the reference
// time that seeded timestamps are offset from; nil means time.Now.
func New(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed)),
		now: now,
	}
}

// Cases returns n cases with zero IDs; the store assigns IDs on insert.
// Each case is last updated up to seven days before the reference time,
// at whole-minute offsets.
func (g *Generator) Cases(n int) []types.Case {
	ref := types.Timestamp(g.now())
	statuses := types.ValidStatuses()
	out := make([]types.Case, 0, n)
	for range n {
		name := fmt.Sprintf("%s %c.", firstNames[g.rng.IntN(len(firstNames))], 'A'+rune(g.rng.IntN(26)))
		out = append(out, types.Case{
			PatientName:    name,
			Procedure:      procedures[g.rng.IntN(len(procedures))],
			Status:         statuses[g.rng.IntN(len(statuses))],
			LastUpdatedUTC: ref.Add(-time.Duration(g.rng.Int64N(int64(maxAge/time.Minute))) * time.Minute),
		})
	}
	return out
}

// Default returns the dataset every store seeds itself with: DefaultCount
// cases from a DefaultSeed generator referenced to now.
func Default(now func() time.Time) []types.Case {
	return New(DefaultSeed, now).Cases(DefaultCount)
}
