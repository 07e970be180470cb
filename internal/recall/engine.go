package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
	"github.com/Veraticus/invoice-memory/internal/common"
	"github.com/Veraticus/invoice-memory/internal/memory"
	"github.com/Veraticus/invoice-memory/internal/memstore"
)

// crossVendorCandidateCap bounds how many cross-vendor generic memories
// (from All()) are considered alongside a vendor's own memories, so a
// large store doesn't make every recall call scan everything.
const crossVendorCandidateCap = 200

// recencyRatePerDay controls how fast recencyScore decays toward 0 as a
// memory goes unused, independent of confidence decay.
const recencyRatePerDay = 0.02

// vendorPrioritizationNudge is added to a vendor-matched candidate's
// ranking score before sorting when EnableVendorPrioritization is set, to
// keep it from falling more than ~0.2 below an otherwise-equal non-vendor
// match (spec §4.3's prioritization rule). The exact mechanism is left to
// the implementation by spec §4.3; this is the chosen heuristic.
const vendorPrioritizationNudge = 0.05

// Engine implements the Recall engine of spec §4.3.
type Engine struct {
	storage memstore.Storage
	clock   clock.Clock
	idGen   clock.IDGenerator
	config  Config
	audit   *auditlog.Log
	logger  *slog.Logger
}

// New constructs a recall Engine. logger may be nil, in which case
// slog.Default() is used.
func New(storage memstore.Storage, config Config, clk clock.Clock, idGen clock.IDGenerator, audit *auditlog.Log, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{storage: storage, clock: clk, idGen: idGen, config: config, audit: audit, logger: logger}
}

// Recall returns a ranked list of memories relevant to ctx. On a storage
// failure it degrades gracefully: empty results, low confidence reasoning,
// and an ErrorHandling audit record, per spec §7's propagation policy.
func (e *Engine) Recall(ctx context.Context, ic InvoiceContext) Output {
	start := e.clock.Now()

	candidates, err := e.gatherCandidates(ctx, ic)
	if err != nil {
		e.audit.Append(auditlog.Record{
			ID:          e.idGen.NewID(),
			Timestamp:   start,
			Operation:   auditlog.OperationErrorHandling,
			Description: "recall: storage unavailable",
			Input:       ic,
			Output:      err.Error(),
			Actor:       "recall",
			DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
		})
		e.logger.Warn("recall degraded", "error", err)
		return Output{
			Reasoning: fmt.Sprintf("storage unavailable, returning no results: %v", err),
		}
	}

	now := e.clock.Now()
	results := make([]Result, 0, len(candidates))
	for _, m := range candidates {
		relevance := calculateRelevance(m, ic)
		if e.config.EnablePatternFiltering && relevance < e.config.MinRelevanceThreshold {
			continue
		}

		cm := buildContextMatch(m, ic)
		recency := recencyScore(now, m.LastUsed)
		ranking := e.rankingScore(m.Confidence, relevance, recency)

		if e.config.EnableVendorPrioritization && cm.VendorMatch {
			ranking = math.Min(1.0, ranking+vendorPrioritizationNudge)
		}

		results = append(results, Result{
			Memory:          m,
			RankingScore:    ranking,
			RelevanceScore:  relevance,
			ConfidenceScore: m.Confidence,
			RecencyScore:    recency,
			ContextMatch:    cm,
			SelectionReason: selectionReason(m, relevance, cm),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankingScore > results[j].RankingScore
	})

	if len(results) > e.config.MaxMemoriesPerQuery {
		results = results[:e.config.MaxMemoriesPerQuery]
	}

	out := Output{
		Results:           results,
		ContextMatchStats: buildStats(results),
		Reasoning:         reasoning(ic, results),
	}

	e.audit.Append(auditlog.Record{
		ID:          e.idGen.NewID(),
		Timestamp:   start,
		Operation:   auditlog.OperationMemoryRecall,
		Description: fmt.Sprintf("recall for vendor %q returned %d results", ic.VendorInfo.ID, len(results)),
		Input:       ic,
		Output:      out,
		Actor:       "recall",
		DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
	})

	return out
}

func (e *Engine) gatherCandidates(ctx context.Context, ic InvoiceContext) ([]memory.Memory, error) {
	byVendor, err := e.vendorCandidates(ctx, ic)
	if err != nil {
		return nil, err
	}

	all, err := e.storage.All(ctx)
	if err != nil {
		return nil, common.WrapStorage("recall.all", err)
	}

	seen := make(map[string]bool, len(byVendor))
	out := make([]memory.Memory, 0, len(byVendor)+crossVendorCandidateCap)
	for _, m := range byVendor {
		seen[m.ID] = true
		out = append(out, m)
	}

	added := 0
	for _, m := range all {
		if seen[m.ID] {
			continue
		}
		if added >= crossVendorCandidateCap {
			break
		}
		out = append(out, m)
		added++
	}

	return out, nil
}

func (e *Engine) vendorCandidates(ctx context.Context, ic InvoiceContext) ([]memory.Memory, error) {
	if ic.VendorInfo.ID == "" {
		return nil, nil
	}
	byVendor, err := e.storage.FindByVendor(ctx, ic.VendorInfo.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, common.WrapStorage("recall.findByVendor", err)
	}
	return byVendor, nil
}

// rankingScore combines the three components with weights normalized to
// sum to 1 whenever they are non-negative and sum positive (open question
// 3), keeping the result a convex combination and thus within
// [min(component), max(component)].
func (e *Engine) rankingScore(confidence, relevance, recency float64) float64 {
	wc, wr, wt := e.config.ConfidenceWeight, e.config.RelevanceWeight, e.config.RecencyWeight
	sum := wc + wr + wt
	if wc < 0 || wr < 0 || wt < 0 || sum <= 0 {
		wc, wr, wt = 0.4, 0.4, 0.2
		sum = 1.0
	}

	score := (wc*confidence + wr*relevance + wt*recency) / sum
	return clamp01(score)
}

func recencyScore(now, lastUsed time.Time) float64 {
	if lastUsed.IsZero() || !lastUsed.Before(now) {
		return 1.0
	}
	days := now.Sub(lastUsed).Hours() / 24
	return clamp01(math.Exp(-recencyRatePerDay * days))
}

func buildContextMatch(m memory.Memory, ic InvoiceContext) ContextMatch {
	vendorMatch := m.Context.VendorID != nil && ic.VendorInfo.ID != "" && *m.Context.VendorID == ic.VendorInfo.ID
	langMatch := languageMatches(m, ic)
	complexityMatch := complexityMatches(m, ic)
	qualityMatch := qualityMatches(m, ic)

	hits := 0
	for _, ok := range []bool{vendorMatch, langMatch, complexityMatch, qualityMatch} {
		if ok {
			hits++
		}
	}

	return ContextMatch{
		VendorMatch:     vendorMatch,
		LanguageMatch:   langMatch,
		ComplexityMatch: complexityMatch,
		QualityMatch:    qualityMatch,
		SimilarityScore: float64(hits) / 4.0,
	}
}

func buildStats(results []Result) MatchStats {
	stats := MatchStats{MemoryTypeDistribution: make(map[memory.Type]int)}
	for _, r := range results {
		if r.ContextMatch.VendorMatch {
			stats.ExactVendorMatches++
		}
		if r.ContextMatch.LanguageMatch {
			stats.LanguageMatches++
		}
		stats.MemoryTypeDistribution[r.Memory.Type]++
	}
	return stats
}

func selectionReason(m memory.Memory, relevance float64, cm ContextMatch) string {
	var parts []string
	if cm.VendorMatch {
		parts = append(parts, "vendor match")
	}
	if cm.LanguageMatch {
		parts = append(parts, "language match")
	}
	parts = append(parts, fmt.Sprintf("%s memory", strings.ToLower(string(m.Type))))
	parts = append(parts, fmt.Sprintf("relevance %.2f", relevance))
	return strings.Join(parts, ", ")
}

func reasoning(ic InvoiceContext, results []Result) string {
	return fmt.Sprintf(
		"evaluated candidates for vendor %q, language %q: %d memories selected after relevance and ranking filters",
		ic.VendorInfo.ID, ic.VendorInfo.Language, len(results),
	)
}
