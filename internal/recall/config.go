package recall

// Config holds the recognized Recall options of spec §6.
type Config struct {
	MaxMemoriesPerQuery int
	// MinRelevanceThreshold is the floor a candidate's relevanceScore must
	// clear to survive filtering, applied only when EnablePatternFiltering
	// is true.
	MinRelevanceThreshold float64
	ConfidenceWeight      float64
	RelevanceWeight       float64
	RecencyWeight         float64
	// EnableVendorPrioritization nudges vendor-matched memories so they
	// don't rank more than ~0.2 below an otherwise-equal non-vendor-match
	// memory (spec §4.3's prioritization rule).
	EnableVendorPrioritization bool
	// EnablePatternFiltering gates the minRelevanceThreshold cut; disabling
	// it returns every scored candidate, filtered only by rank and cap.
	EnablePatternFiltering bool
}

// DefaultConfig returns the documented defaults of spec §6.
func DefaultConfig() Config {
	return Config{
		MaxMemoriesPerQuery:        20,
		MinRelevanceThreshold:      0.1,
		ConfidenceWeight:           0.4,
		RelevanceWeight:            0.4,
		RecencyWeight:              0.2,
		EnableVendorPrioritization: true,
		EnablePatternFiltering:     true,
	}
}
