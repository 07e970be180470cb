package recognizer

import (
	"strings"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// vatInclusionIndicators and vatExclusionIndicators are the raw-text
// phrases spec §4.4 names for detecting whether a vendor's prices include
// VAT.
var vatInclusionIndicators = []string{
	"inkl. mwst",
	"inklusive mwst",
	"mwst. inkl.",
	"brutto",
	"preise inkl.",
	"incl. vat",
}

var vatExclusionIndicators = []string{
	"zzgl. mwst",
	"zuzüglich mwst",
	"netto",
	"preise zzgl.",
	"exkl. mwst",
	"excl. vat",
}

// detectVATBehavior scans each invoice's raw text for the known inclusion
// and exclusion indicators and applies the majority rule from spec §4.4:
// whichever indicator set fires on more invoices determines
// VATIncludedInPrices. Ties favor exclusion (the conservative default).
func detectVATBehavior(invoices []invoice.Invoice) (memory.VATBehavior, []string, bool) {
	var inclusionHits, exclusionHits int
	var fired []string
	rateCounts := make(map[float64]int)

	for _, inv := range invoices {
		lower := strings.ToLower(inv.RawText)

		matchedInclusion := false
		for _, ind := range vatInclusionIndicators {
			if strings.Contains(lower, ind) {
				matchedInclusion = true
				fired = append(fired, ind)
			}
		}
		matchedExclusion := false
		for _, ind := range vatExclusionIndicators {
			if strings.Contains(lower, ind) {
				matchedExclusion = true
				fired = append(fired, ind)
			}
		}
		if matchedInclusion {
			inclusionHits++
		}
		if matchedExclusion {
			exclusionHits++
		}

		if rate, ok := inferVATRate(inv); ok {
			rateCounts[rate]++
		}
	}

	if inclusionHits == 0 && exclusionHits == 0 {
		return memory.VATBehavior{}, nil, false
	}

	behavior := memory.VATBehavior{
		VATIncludedInPrices: inclusionHits > exclusionHits,
		InclusionIndicators: dedupe(vatInclusionIndicators, fired),
		ExclusionIndicators: dedupe(vatExclusionIndicators, fired),
	}

	if rate, ok := mostFrequentRate(rateCounts); ok {
		behavior.DefaultVATRate = &rate
	}

	return behavior, fired, true
}

// inferVATRate reads a vatAmount/netAmount field pair off an invoice, if
// present, and computes the implied VAT percentage.
func inferVATRate(inv invoice.Invoice) (float64, bool) {
	vat, ok := inv.Field("vatAmount")
	if !ok {
		return 0, false
	}
	net, ok := inv.Field("netAmount")
	if !ok {
		return 0, false
	}

	vatVal, err1 := parseAmount(vat.Value)
	netVal, err2 := parseAmount(net.Value)
	if err1 != nil || err2 != nil || netVal == 0 {
		return 0, false
	}

	rate := (vatVal / netVal) * 100
	return roundToNearestCommonRate(rate), true
}

// roundToNearestCommonRate snaps a computed rate to the nearest of the
// common German VAT rates (7% and 19%), falling back to the raw value
// when neither is close.
func roundToNearestCommonRate(rate float64) float64 {
	for _, common := range []float64{19, 7} {
		if abs(rate-common) <= 0.5 {
			return common
		}
	}
	return rate
}

func mostFrequentRate(counts map[float64]int) (float64, bool) {
	var best float64
	var bestCount int
	for rate, count := range counts {
		if count > bestCount || (count == bestCount && rate < best) {
			best = rate
			bestCount = count
		}
	}
	return best, bestCount > 0
}

func dedupe(known []string, fired []string) []string {
	firedSet := make(map[string]bool, len(fired))
	for _, f := range fired {
		firedSet[f] = true
	}
	var out []string
	for _, k := range known {
		if firedSet[k] {
			out = append(out, k)
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// mergeVATBehavior implements spec §4.4's VAT majority overwrite: a
// re-analysis with new evidence replaces the stored behavior (the new
// sample is by definition the more complete majority), except that a nil
// incoming DefaultVATRate keeps the stored rate, and indicator sets union.
func mergeVATBehavior(existing, incoming memory.VATBehavior) memory.VATBehavior {
	merged := incoming
	merged.InclusionIndicators = unionStrings(existing.InclusionIndicators, incoming.InclusionIndicators)
	merged.ExclusionIndicators = unionStrings(existing.ExclusionIndicators, incoming.ExclusionIndicators)
	if incoming.DefaultVATRate == nil {
		merged.DefaultVATRate = existing.DefaultVATRate
	}
	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
