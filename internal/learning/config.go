package learning

// Config holds the Learning engine options of spec §6.
type Config struct {
	MinPatternOccurrences           int
	MaxPatternAgeDays               int
	MinNewMemoryConfidence          float64
	MaxMemoriesPerSession           int
	EnableVendorSpecificLearning    bool
	EnableCorrectionPatternLearning bool
	EnableResolutionLearning        bool
	LearningRate                    float64
	SimilarityThreshold             float64
}

// DefaultConfig returns the documented defaults of spec §6.
func DefaultConfig() Config {
	return Config{
		MinPatternOccurrences:           3,
		MaxPatternAgeDays:               30,
		MinNewMemoryConfidence:          0.4,
		MaxMemoriesPerSession:           10,
		EnableVendorSpecificLearning:    true,
		EnableCorrectionPatternLearning: true,
		EnableResolutionLearning:        true,
		LearningRate:                    0.1,
		SimilarityThreshold:             0.6,
	}
}
