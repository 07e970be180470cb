package duplicate

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
)

// potentialDuplicateThreshold is the aggregate similarityScore above which
// a candidate is reported, an implementation choice spec §4.6 leaves open
// ("exceeds an implementation threshold").
const potentialDuplicateThreshold = 0.5

// criteriaWeight is the weight each matching criterion contributes to the
// aggregate similarityScore's weighted mean. Only criteria that actually
// ran (matched or not) contribute; a criterion skipped because a date or
// amount is absent on either side is excluded entirely.
var criteriaWeight = map[CriteriaType]float64{
	CriteriaExactInvoiceNumber: 0.4,
	CriteriaFuzzyInvoiceNumber: 0.3,
	CriteriaDateProximity:      0.2,
	CriteriaAmountTolerance:    0.1,
}

// Engine implements the Duplicate Detector of spec §4.6.
type Engine struct {
	index  Index
	clock  clock.Clock
	idGen  clock.IDGenerator
	config Config
	audit  *auditlog.Log
	logger *slog.Logger
}

// New constructs a duplicate Engine. logger may be nil, in which case
// slog.Default() is used.
func New(index Index, config Config, clk clock.Clock, idGen clock.IDGenerator, audit *auditlog.Log, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{index: index, clock: clk, idGen: idGen, config: config, audit: audit, logger: logger}
}

// Detect scores q against every prior invoice sharing q.VendorID. On
// storage failure it degrades per spec §4.6: no duplicates found, one
// validation issue naming the failure, confidence <= 0.1.
func (e *Engine) Detect(ctx context.Context, q Query) Output {
	start := e.clock.Now()

	candidates, err := e.index.FindByVendor(ctx, q.VendorID)
	if err != nil {
		e.audit.Append(auditlog.Record{
			ID:          e.idGen.NewID(),
			Timestamp:   start,
			Operation:   auditlog.OperationErrorHandling,
			Description: "duplicate detection: storage unavailable",
			Input:       q,
			Output:      err.Error(),
			Actor:       "duplicate",
			DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
		})
		e.logger.Warn("duplicate detection degraded", "error", err)
		return Output{
			DuplicatesFound: false,
			ValidationIssues: []ValidationIssue{
				{Severity: SeverityError, IssueType: "STORAGE_UNAVAILABLE", Description: fmt.Sprintf("could not query prior invoices: %v", err)},
			},
			Confidence: 0.1,
			Reasoning:  fmt.Sprintf("storage unavailable, returning no duplicates: %v", err),
		}
	}

	var potentials []PotentialDuplicate
	var issues []ValidationIssue

	for _, cand := range candidates {
		criteria, daysDiff := e.scoreCandidate(q, cand)
		score := aggregateScore(criteria)
		if score <= potentialDuplicateThreshold || hardFails(criteria) {
			continue
		}

		potentials = append(potentials, PotentialDuplicate{
			ID:               cand.ID,
			VendorID:         cand.VendorID,
			InvoiceNumber:    cand.InvoiceNumber,
			DaysDifference:   daysDiff,
			SimilarityScore:  score,
			MatchingCriteria: criteria,
		})
	}

	duplicatesFound := len(potentials) > 0
	if duplicatesFound {
		issues = append(issues, ValidationIssue{
			Severity:    SeverityWarning,
			IssueType:   "POTENTIAL_DUPLICATE",
			Description: fmt.Sprintf("%d potential duplicate(s) found for vendor %q", len(potentials), q.VendorID),
		})
	}

	out := Output{
		DuplicatesFound:     duplicatesFound,
		PotentialDuplicates: potentials,
		ValidationIssues:    issues,
		Confidence:          overallConfidence(potentials),
		Reasoning: fmt.Sprintf(
			"compared against %d prior invoice(s) for vendor %q: %d potential duplicate(s)",
			len(candidates), q.VendorID, len(potentials),
		),
	}

	e.audit.Append(auditlog.Record{
		ID:          e.idGen.NewID(),
		Timestamp:   start,
		Operation:   auditlog.OperationValidation,
		Description: out.Reasoning,
		Input:       q,
		Output:      out,
		Actor:       "duplicate",
		DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
	})

	return out
}

func (e *Engine) scoreCandidate(q Query, cand InvoiceRecord) ([]MatchingCriterion, *int) {
	var criteria []MatchingCriterion

	exactMatch := q.InvoiceNumber == cand.InvoiceNumber
	criteria = append(criteria, MatchingCriterion{
		CriteriaType: CriteriaExactInvoiceNumber,
		Matched:      exactMatch,
		Confidence:   boolConfidence(exactMatch),
	})

	if e.config.EnableFuzzyMatching {
		sim := stringSimilarity(q.InvoiceNumber, cand.InvoiceNumber)
		criteria = append(criteria, MatchingCriterion{
			CriteriaType: CriteriaFuzzyInvoiceNumber,
			Matched:      sim >= e.config.FuzzyMatchThreshold,
			Confidence:   sim,
		})
	}

	var daysDiff *int
	if q.InvoiceDate != nil && cand.InvoiceDate != nil {
		days := int(math.Round(q.InvoiceDate.Sub(*cand.InvoiceDate).Hours() / 24))
		daysDiff = &days
		within := abs(days) <= e.config.DateProximityDays
		criteria = append(criteria, MatchingCriterion{
			CriteriaType: CriteriaDateProximity,
			Matched:      within,
			Confidence:   dateProximityConfidence(days, e.config.DateProximityDays),
		})
	}

	if e.config.EnableAmountComparison && q.Amount != nil && cand.Amount != nil && *cand.Amount != 0 {
		deltaPct := math.Abs(*q.Amount-*cand.Amount) / math.Abs(*cand.Amount) * 100
		within := deltaPct <= e.config.AmountTolerancePercent
		criteria = append(criteria, MatchingCriterion{
			CriteriaType: CriteriaAmountTolerance,
			Matched:      within,
			Confidence:   amountToleranceConfidence(deltaPct, e.config.AmountTolerancePercent),
		})
	}

	return criteria, daysDiff
}

func boolConfidence(matched bool) float64 {
	if matched {
		return 1.0
	}
	return 0.0
}

// dateProximityConfidence decreases from 1.0 at Δ=0 days to 0.5 at
// Δ=proximityDays (the matched boundary), then continues falling past it;
// invariant 12 only constrains the matched range, so the floor of 0.5 there
// keeps a same-day-ish match from scoring low purely on date decay. The
// exact curve is an implementation choice (spec §4.6 only requires
// monotone decrease).
func dateProximityConfidence(days, proximityDays int) float64 {
	if proximityDays <= 0 {
		return boolConfidence(days == 0)
	}
	ratio := float64(abs(days)) / float64(proximityDays)
	conf := 1.0 - 0.5*ratio
	if conf < 0 {
		return 0
	}
	return conf
}

// hardFails reports whether any criterion that actually ran (date
// proximity or amount tolerance) failed to match. A candidate failing
// either is never reported, regardless of its aggregate score: a
// similar-looking invoice number at an implausible date or amount is not a
// duplicate (spec §4.6 scenario S3).
func hardFails(criteria []MatchingCriterion) bool {
	for _, c := range criteria {
		if (c.CriteriaType == CriteriaDateProximity || c.CriteriaType == CriteriaAmountTolerance) && !c.Matched {
			return true
		}
	}
	return false
}

func amountToleranceConfidence(deltaPct, tolerancePercent float64) float64 {
	if tolerancePercent <= 0 {
		return boolConfidence(deltaPct == 0)
	}
	conf := 1.0 - deltaPct/tolerancePercent
	if conf < 0 {
		return 0
	}
	return conf
}

func aggregateScore(criteria []MatchingCriterion) float64 {
	var weighted, totalWeight float64
	for _, c := range criteria {
		w := criteriaWeight[c.CriteriaType]
		weighted += w * c.Confidence
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

func overallConfidence(potentials []PotentialDuplicate) float64 {
	if len(potentials) == 0 {
		return 0
	}
	best := potentials[0].SimilarityScore
	for _, p := range potentials[1:] {
		if p.SimilarityScore > best {
			best = p.SimilarityScore
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
