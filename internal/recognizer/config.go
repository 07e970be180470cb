package recognizer

// Config holds the recognized Recognizer options of spec §6.
type Config struct {
	MinPatternConfidence     float64
	MinExamplesForPattern    int
	MaxExampleAgeDays        int
	EnableVATDetection       bool
	EnableCurrencyLearning   bool
	EnableDateFormatLearning bool
	VendorSpecificBoost      float64
}

// DefaultConfig returns the documented defaults of spec §6.
func DefaultConfig() Config {
	return Config{
		MinPatternConfidence:     0.6,
		MinExamplesForPattern:    2,
		MaxExampleAgeDays:        90,
		EnableVATDetection:       true,
		EnableCurrencyLearning:   true,
		EnableDateFormatLearning: true,
		VendorSpecificBoost:      0.2,
	}
}
