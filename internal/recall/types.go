package recall

import (
	"time"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// Environment is the operational context around a recall call.
type Environment struct {
	Timestamp         time.Time
	Priority          string
	TimeConstraints   string
	RegulatoryContext string
}

// InvoiceContext is the Recall engine's input (spec §4.3). Characteristics
// is not explicitly named in spec §4.3's invoiceContext shape, but the
// complexity/language/quality bonuses in the relevance formulas require
// comparing the current invoice against a memory's recorded
// invoiceCharacteristics, so this implementation carries the same
// InvoiceCharacteristics shape on the query side.
type InvoiceContext struct {
	Invoice         invoice.Invoice
	VendorInfo      invoice.VendorInfo
	Environment     Environment
	Characteristics memory.InvoiceCharacteristics
	// History is opaque, like pattern.patternData (spec §9): the pipeline
	// may attach whatever historical summary it has without this package
	// imposing structure on it.
	History map[string]any
}

// ContextMatch records how a candidate memory's recorded context compares
// to the current invoice context.
type ContextMatch struct {
	VendorMatch     bool
	LanguageMatch   bool
	ComplexityMatch bool
	QualityMatch    bool
	SimilarityScore float64
}

// Result is one ranked memory in a recall response.
type Result struct {
	Memory          memory.Memory
	RankingScore    float64
	RelevanceScore  float64
	ConfidenceScore float64
	RecencyScore    float64
	ContextMatch    ContextMatch
	SelectionReason string
}

// MatchStats aggregates the match quality across every result returned.
type MatchStats struct {
	ExactVendorMatches     int
	LanguageMatches        int
	MemoryTypeDistribution map[memory.Type]int
}

// Output is the Recall engine's response.
type Output struct {
	Results           []Result
	ContextMatchStats MatchStats
	Reasoning         string
}
