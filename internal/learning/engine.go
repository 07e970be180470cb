package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
	"github.com/Veraticus/invoice-memory/internal/confidence"
	"github.com/Veraticus/invoice-memory/internal/memory"
	"github.com/Veraticus/invoice-memory/internal/memstore"
)

// batchConfidenceStep is the per-extra-member confidence bump a Batch
// group earns on top of MinNewMemoryConfidence, invented since spec §4.5
// gives a formula only for PatternBased groups.
const batchConfidenceStep = 0.05

// Engine implements the Learning engine of spec §4.5.
type Engine struct {
	storage memstore.Storage
	clock   clock.Clock
	idGen   clock.IDGenerator
	config  Config
	audit   *auditlog.Log
	logger  *slog.Logger
}

// New constructs a learning Engine. logger may be nil, in which case
// slog.Default() is used.
func New(storage memstore.Storage, config Config, clk clock.Clock, idGen clock.IDGenerator, audit *auditlog.Log, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{storage: storage, clock: clk, idGen: idGen, config: config, audit: audit, logger: logger}
}

// Learn runs one learning session over in.Corrections, in.ProcessingOutcome,
// and in.ApprovedMemories and returns the reported Outcome of spec §4.5.
// Memory creation never exceeds config.MaxMemoriesPerSession.
func (e *Engine) Learn(ctx context.Context, in Input) Outcome {
	start := e.clock.Now()
	sessionID := e.idGen.NewID()

	var results []Result
	memoriesCreated := 0
	patternsRecognized := 0

	budget := e.config.MaxMemoriesPerSession

	switch in.Strategy {
	case StrategyBatch:
		created, patterns := e.learnBatch(ctx, in, budget)
		results = append(results, created...)
		memoriesCreated += countSuccesses(created)
		patternsRecognized += patterns
	case StrategyImmediate:
		created := e.learnImmediate(ctx, in.VendorID, in.Corrections, budget)
		results = append(results, created...)
		memoriesCreated += countSuccesses(created)
	default: // StrategyPatternBased
		patternResults, covered, patterns := e.learnPatterns(ctx, in, budget)
		results = append(results, patternResults...)
		memoriesCreated += countSuccesses(patternResults)
		patternsRecognized += patterns

		remaining := budget - memoriesCreated
		if remaining > 0 {
			uncovered := uncoveredCorrections(in.Corrections, covered)
			fallback := e.learnImmediate(ctx, in.VendorID, uncovered, remaining)
			results = append(results, fallback...)
			memoriesCreated += countSuccesses(fallback)
		}
	}

	if memoriesCreated < budget {
		if resolution := e.learnResolution(ctx, in.ProcessingOutcome); resolution != nil {
			results = append(results, *resolution)
			if resolution.Success {
				memoriesCreated++
			}
		}
	}

	reinforced, reinforceResults := e.reinforceApproved(ctx, in.ApprovedMemories)
	results = append(results, reinforceResults...)

	out := Outcome{
		SessionID:            sessionID,
		Timestamp:            e.clock.Now().Format(time.RFC3339),
		Strategy:             in.Strategy,
		CorrectionsProcessed: len(in.Corrections),
		MemoriesCreated:      memoriesCreated,
		MemoriesReinforced:   reinforced,
		PatternsRecognized:   patternsRecognized,
		LearningConfidence:   meanSuccessfulConfidence(results),
		LearningResults:      results,
		Reasoning: fmt.Sprintf(
			"processed %d corrections using %s strategy: %d memories created, %d reinforced, %d patterns recognized",
			len(in.Corrections), in.Strategy, memoriesCreated, reinforced, patternsRecognized,
		),
	}

	e.audit.Append(auditlog.Record{
		ID:          sessionID,
		Timestamp:   start,
		Operation:   auditlog.OperationMemoryLearning,
		Description: out.Reasoning,
		Input:       in,
		Output:      out,
		Actor:       "learning",
		DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
	})

	return out
}

func (e *Engine) learnImmediate(ctx context.Context, vendorID string, corrections []Correction, budget int) []Result {
	var results []Result
	for _, c := range corrections {
		if len(results) >= budget {
			break
		}
		results = append(results, e.emitCorrectionMemory(ctx, vendorID, []Correction{c}, c.CorrectedValue, e.config.MinNewMemoryConfidence, ""))
	}
	return results
}

func (e *Engine) learnBatch(ctx context.Context, in Input, budget int) ([]Result, int) {
	groups := batchGroups(in.Corrections)
	var results []Result
	for _, group := range groups {
		if len(results) >= budget {
			break
		}
		conf := clampRange(e.config.MinNewMemoryConfidence+batchConfidenceStep*float64(len(group)-2), e.config.MinNewMemoryConfidence, 0.9)
		results = append(results, e.emitCorrectionMemory(ctx, in.VendorID, group, group[0].CorrectedValue, conf, ""))
	}
	return results, len(groups)
}

func (e *Engine) learnPatterns(ctx context.Context, in Input, budget int) ([]Result, []Correction, int) {
	if !e.config.EnableCorrectionPatternLearning {
		return nil, nil, 0
	}

	patterns := minePatterns(in.Corrections, e.config.MinPatternOccurrences, e.config.SimilarityThreshold)
	var results []Result
	var covered []Correction
	for _, p := range patterns {
		covered = append(covered, p.corrections...)
		if len(results) >= budget {
			continue
		}
		results = append(results, e.emitCorrectionMemory(ctx, in.VendorID, p.corrections, p.mostCommonValue, p.confidence, string(p.kind)))
	}
	return results, covered, len(patterns)
}

// learnResolution handles input kind (b) of spec §4.5: a full processing
// outcome with human feedback on a resolved discrepancy. Returns nil when
// outcome is absent or config.EnableResolutionLearning is off.
func (e *Engine) learnResolution(ctx context.Context, outcome *ProcessingOutcome) *Result {
	if outcome == nil || !e.config.EnableResolutionLearning {
		return nil
	}

	now := e.clock.Now()
	conf := memory.ClampConfidence(0.5 + 0.5*outcome.HumanDecision.Confidence)

	var vendorPtr *string
	if outcome.VendorID != "" && e.config.EnableVendorSpecificLearning {
		vendorPtr = &outcome.VendorID
	}

	m := memory.Memory{
		ID:         e.idGen.NewID(),
		Type:       memory.TypeResolution,
		Confidence: conf,
		Pattern: memory.Pattern{
			PatternType: "resolution-" + outcome.DiscrepancyType,
			Threshold:   e.config.SimilarityThreshold,
		},
		CreatedAt:   now,
		LastUsed:    now,
		UsageCount:  0,
		SuccessRate: 0,
		Context: memory.Context{
			VendorID: vendorPtr,
		},
		Payload: memory.ResolutionPayload{
			DiscrepancyType:   outcome.DiscrepancyType,
			ResolutionOutcome: outcome.ResolutionOutcome,
			HumanDecision:     outcome.HumanDecision,
			ContextFactors:    outcome.ContextFactors,
		},
	}

	if err := e.storage.Save(ctx, m); err != nil {
		return &Result{Type: string(memory.TypeResolution), Confidence: conf, Success: false, ErrorMessage: err.Error()}
	}

	return &Result{
		Type:       string(memory.TypeResolution),
		MemoryID:   m.ID,
		Confidence: m.Confidence,
		Success:    true,
	}
}

// emitCorrectionMemory builds and saves one CorrectionMemory from a group
// of corrections sharing a field, per spec §4.5's memory generation rule.
func (e *Engine) emitCorrectionMemory(ctx context.Context, vendorID string, group []Correction, newValue string, conf float64, patternLabel string) Result {
	if len(group) == 0 {
		return Result{Success: false, ErrorMessage: "empty correction group"}
	}
	field := group[0].Field
	now := e.clock.Now()

	var vendorPtr *string
	if vendorID != "" && e.config.EnableVendorSpecificLearning {
		vendorPtr = &vendorID
	}

	m := memory.Memory{
		ID:         e.idGen.NewID(),
		Type:       memory.TypeCorrection,
		Confidence: memory.ClampConfidence(conf),
		Pattern: memory.Pattern{
			PatternType: "correction-" + string(classifyValue(newValue)),
			Threshold:   e.config.SimilarityThreshold,
		},
		CreatedAt:   now,
		LastUsed:    now,
		UsageCount:  0,
		SuccessRate: 0,
		Context: memory.Context{
			VendorID: vendorPtr,
		},
		Payload: memory.CorrectionPayload{
			CorrectionType: correctionTypeFor(field),
			TriggerConditions: []memory.TriggerCondition{
				{Field: field, Operator: "EXISTS"},
			},
			CorrectionAction: memory.CorrectionAction{
				ActionType:  "SET_FIELD",
				TargetField: field,
				NewValue:    newValue,
				Explanation: fmt.Sprintf("learned from %d correction(s) to %s", len(group), field),
			},
		},
	}

	if err := e.storage.Save(ctx, m); err != nil {
		return Result{Type: string(memory.TypeCorrection), Confidence: conf, SourceCorrections: len(group), Pattern: patternLabel, Success: false, ErrorMessage: err.Error()}
	}

	return Result{
		Type:              string(memory.TypeCorrection),
		MemoryID:          m.ID,
		Confidence:        m.Confidence,
		SourceCorrections: len(group),
		Pattern:           patternLabel,
		Success:           true,
	}
}

func (e *Engine) reinforceApproved(ctx context.Context, approved []ApprovedMemory) (int, []Result) {
	var results []Result
	count := 0

	for _, a := range approved {
		m, err := e.storage.FindByID(ctx, a.MemoryID)
		if err != nil {
			results = append(results, Result{Type: "Reinforcement", MemoryID: a.MemoryID, Success: false, ErrorMessage: err.Error()})
			continue
		}

		newConfidence := confidence.Reinforce(m.Confidence, a.Outcome, a.Rating)
		now := e.clock.Now()
		m = memory.UpdateUsage(m, isSuccessOutcome(a.Outcome), now)
		m.Confidence = newConfidence

		if err := e.storage.Save(ctx, m); err != nil {
			results = append(results, Result{Type: "Reinforcement", MemoryID: a.MemoryID, Success: false, ErrorMessage: err.Error()})
			continue
		}

		count++
		results = append(results, Result{
			Type:       "Reinforcement",
			MemoryID:   m.ID,
			Confidence: m.Confidence,
			Success:    true,
		})
	}

	return count, results
}

func isSuccessOutcome(o confidence.Outcome) bool {
	return o == confidence.SuccessAuto || o == confidence.SuccessHumanReview
}

func countSuccesses(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

func meanSuccessfulConfidence(results []Result) float64 {
	var sum float64
	var count int
	for _, r := range results {
		if r.Success {
			sum += r.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func uncoveredCorrections(all, covered []Correction) []Correction {
	coveredSet := make(map[Correction]bool, len(covered))
	for _, c := range covered {
		coveredSet[c] = true
	}
	var out []Correction
	for _, c := range all {
		if !coveredSet[c] {
			out = append(out, c)
		}
	}
	return out
}
