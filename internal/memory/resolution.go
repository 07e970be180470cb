package memory

// ResolutionPayload captures how a human resolved a discrepancy the
// pipeline flagged during processing.
type ResolutionPayload struct {
	DiscrepancyType   string          `json:"discrepancyType"`
	ResolutionOutcome string          `json:"resolutionOutcome"`
	HumanDecision     HumanDecision   `json:"humanDecision"`
	ContextFactors    []ContextFactor `json:"contextFactors,omitempty"`
}

// HumanDecision is the decision a human made and how confident the system
// is that it generalizes.
type HumanDecision struct {
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
}

// ContextFactor is one weighted signal that contributed to a resolution's
// applicability (spec §4.3's relevance formula sums factor.weight*0.1).
type ContextFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
