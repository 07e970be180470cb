package confidence

import (
	"math"
	"time"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

// decayRatePerDay controls how fast unused confidence erodes. Grounded on
// the exponential time-decay pattern (score * exp(-rate*monthsOld)) used
// elsewhere in the pack's confidence scoring; here the unit is days rather
// than months since a memory's lastUsed is invoice-granularity, not
// session-granularity.
const decayRatePerDay = 0.01

// Decay applies exponential time decay toward the confidence floor:
// decay(c, 0) == c; decay is non-increasing in elapsed; and the floor
// (memory.MinConfidence) is asymptotic, never crossed, since (c-floor) is
// scaled by a factor in (0,1] and added back to the floor.
func Decay(c float64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return memory.ClampConfidence(c)
	}

	days := elapsed.Hours() / 24
	factor := math.Exp(-decayRatePerDay * days)
	decayed := memory.MinConfidence + (c-memory.MinConfidence)*factor
	return memory.ClampConfidence(decayed)
}
