package recall

import "github.com/Veraticus/invoice-memory/internal/memory"

// bonus returns 1.0 for an exact match and a fixed penalty otherwise. The
// spec names these as multiplicative "bonuses" without fixing their
// magnitude when the match fails; 0.8 is this implementation's choice,
// documented in DESIGN.md.
func bonus(match bool) float64 {
	if match {
		return 1.0
	}
	return 0.8
}

// calculateRelevance dispatches relevance scoring on m's type tag, per the
// free-function-over-tag design of spec §9. ctx carries the invoice
// context the memory is being scored against.
func calculateRelevance(m memory.Memory, ctx InvoiceContext) float64 {
	switch p := m.Payload.(type) {
	case memory.VendorPayload:
		return vendorRelevance(m, p, ctx)
	case memory.CorrectionPayload:
		return correctionRelevance(m, p, ctx)
	case memory.ResolutionPayload:
		return resolutionRelevance(m, p, ctx)
	default:
		return 0
	}
}

func vendorRelevance(m memory.Memory, p memory.VendorPayload, ctx InvoiceContext) float64 {
	if ctx.VendorInfo.ID == "" || p.VendorID != ctx.VendorInfo.ID {
		return 0
	}

	languageBonus := bonus(languageMatches(m, ctx))
	complexityBonus := bonus(complexityMatches(m, ctx))

	score := m.Confidence * (0.5 + 0.5*m.SuccessRate) * languageBonus * 1.1 * complexityBonus * 1.05
	return clamp01(score)
}

func correctionRelevance(m memory.Memory, p memory.CorrectionPayload, ctx InvoiceContext) float64 {
	if len(p.TriggerConditions) == 0 {
		return 0
	}

	vendorBonus := vendorAssociationBonus(m, ctx)
	complexityBonus := bonus(complexityMatches(m, ctx))

	score := m.Confidence * (0.3 + 0.7*m.SuccessRate) * vendorBonus * 1.2 * complexityBonus * 1.1
	return clamp01(score)
}

func resolutionRelevance(m memory.Memory, p memory.ResolutionPayload, ctx InvoiceContext) float64 {
	vendorBonus := vendorAssociationBonus(m, ctx)

	var weightedFactors float64
	for _, f := range p.ContextFactors {
		weightedFactors += f.Weight * 0.1
	}
	if weightedFactors > 0.5 {
		weightedFactors = 0.5
	}

	score := m.Confidence * (0.5 + 0.5*p.HumanDecision.Confidence) * vendorBonus * 1.3 * (1 + weightedFactors)
	return clamp01(score)
}

// vendorAssociationBonus rewards a memory scoped to the current vendor,
// treats a vendor-agnostic memory (no recorded vendor) as universally
// applicable, and penalizes one recorded against a different vendor.
func vendorAssociationBonus(m memory.Memory, ctx InvoiceContext) float64 {
	switch {
	case m.Context.VendorID == nil:
		return 1.0
	case ctx.VendorInfo.ID != "" && *m.Context.VendorID == ctx.VendorInfo.ID:
		return 1.0
	default:
		return 0.7
	}
}

func languageMatches(m memory.Memory, ctx InvoiceContext) bool {
	lang := ctx.Characteristics.Language
	if lang == "" {
		lang = ctx.VendorInfo.Language
	}
	return m.Context.InvoiceCharacteristics.Language != "" &&
		m.Context.InvoiceCharacteristics.Language == lang
}

func complexityMatches(m memory.Memory, ctx InvoiceContext) bool {
	return m.Context.InvoiceCharacteristics.Complexity != "" &&
		m.Context.InvoiceCharacteristics.Complexity == ctx.Characteristics.Complexity
}

func qualityMatches(m memory.Memory, ctx InvoiceContext) bool {
	const tolerance = 0.1
	diff := m.Context.InvoiceCharacteristics.ExtractionQuality - ctx.Characteristics.ExtractionQuality
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
