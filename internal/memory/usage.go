package memory

import "time"

// emaAlpha is the exponential-moving-average weight used by UpdateUsage,
// fixed at 0.1 by spec §3 invariant 4.
const emaAlpha = 0.1

// UpdateUsage returns a copy of m with usageCount incremented, lastUsed set
// to now, and successRate updated by the EMA
// s <- alpha*1[success] + (1-alpha)*s. It never mutates m.
func UpdateUsage(m Memory, success bool, now time.Time) Memory {
	outcome := 0.0
	if success {
		outcome = 1.0
	}

	m.SuccessRate = emaAlpha*outcome + (1-emaAlpha)*m.SuccessRate
	m.UsageCount++
	m.LastUsed = now
	return m
}
