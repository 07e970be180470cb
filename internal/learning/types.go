package learning

import (
	"github.com/Veraticus/invoice-memory/internal/confidence"
	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// Strategy selects how Input.Corrections are turned into memories, per
// spec §4.5.
type Strategy string

// The three strategies.
const (
	StrategyImmediate    Strategy = "Immediate"
	StrategyBatch        Strategy = "Batch"
	StrategyPatternBased Strategy = "PatternBased"
)

// Correction is one human correction supplied to a learning session: a
// field on an invoice that a human overrode from OriginalValue to
// CorrectedValue.
type Correction struct {
	VendorID       string
	Field          string
	OriginalValue  string
	CorrectedValue string
}

// ApprovedMemory is one applied memory a human approved, reported back for
// reinforcement (spec §4.5's "Reinforcement on approval" input).
type ApprovedMemory struct {
	MemoryID string
	Outcome  confidence.Outcome
	Rating   *int
}

// ProcessingOutcome is input kind (b) of spec §4.5: a full processing
// outcome with human feedback on how a flagged discrepancy was resolved.
// A non-nil ProcessingOutcome on an Input produces a ResolutionMemory.
type ProcessingOutcome struct {
	VendorID          string
	DiscrepancyType   string
	ResolutionOutcome string
	HumanDecision     memory.HumanDecision
	ContextFactors    []memory.ContextFactor
}

// Input is the Learning engine's unified call shape, covering all three
// input kinds of spec §4.5: corrections to learn from (a), a processing
// outcome to record as a resolution (b), and approved memories to
// reinforce (c). A session may supply any combination of the three.
type Input struct {
	VendorID          string
	Strategy          Strategy
	Corrections       []Correction
	RawInvoice        *invoice.Invoice
	NormalizedInvoice *invoice.Invoice
	ProcessingOutcome *ProcessingOutcome
	ApprovedMemories  []ApprovedMemory
}

// Result is one entry of Outcome.LearningResults.
type Result struct {
	Type              string
	MemoryID          string
	Confidence        float64
	SourceCorrections int
	Pattern           string
	Success           bool
	ErrorMessage      string
}

// Outcome is the Learning engine's reported session summary, spec §4.5.
type Outcome struct {
	SessionID            string
	Timestamp            string
	Strategy             Strategy
	CorrectionsProcessed int
	MemoriesCreated      int
	MemoriesReinforced   int
	PatternsRecognized   int
	LearningConfidence   float64
	LearningResults      []Result
	Reasoning            string
}
