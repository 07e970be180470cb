package duplicate

// Config holds the Duplicate Detector options of spec §6.
type Config struct {
	DateProximityDays      int
	EnableFuzzyMatching    bool
	FuzzyMatchThreshold    float64
	EnableAmountComparison bool
	AmountTolerancePercent float64
}

// DefaultConfig returns the documented defaults of spec §6.
func DefaultConfig() Config {
	return Config{
		DateProximityDays:      7,
		EnableFuzzyMatching:    true,
		FuzzyMatchThreshold:    0.85,
		EnableAmountComparison: true,
		AmountTolerancePercent: 5,
	}
}
