package recognizer

import (
	"regexp"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// currencyPatternFamily is one recognized currency formatting regex, named
// by its own pattern source.
type currencyPatternFamily struct {
	name string
	re   *regexp.Regexp
}

var currencyPatternFamilies = []currencyPatternFamily{
	{name: `^\d{1,3}(\.\d{3})*,\d{2}\s?€$`, re: regexp.MustCompile(`^\d{1,3}(\.\d{3})*,\d{2}\s?€$`)},
	{name: `^€\s?\d{1,3}(,\d{3})*\.\d{2}$`, re: regexp.MustCompile(`^€\s?\d{1,3}(,\d{3})*\.\d{2}$`)},
	{name: `^\d+,\d{2}\s?EUR$`, re: regexp.MustCompile(`^\d+,\d{2}\s?EUR$`)},
	{name: `^\d+\.\d{2}$`, re: regexp.MustCompile(`^\d+\.\d{2}$`)},
}

// detectCurrencyPatterns implements spec §4.4's currency regex family
// detection: each known pattern is matched against the value of every
// extracted field across invoices (field names are not consulted), and
// only patterns meeting minExamples are kept, each carrying its own
// example count and a confidence of 0.5 + 0.1 per match, capped at 1.
func detectCurrencyPatterns(invoices []invoice.Invoice, minExamples int) []memory.CurrencyPattern {
	counts := make(map[string]int, len(currencyPatternFamilies))

	for _, inv := range invoices {
		for _, field := range inv.ExtractedFields {
			for _, fam := range currencyPatternFamilies {
				if fam.re.MatchString(field.Value) {
					counts[fam.name]++
				}
			}
		}
	}

	var out []memory.CurrencyPattern
	for _, fam := range currencyPatternFamilies {
		count := counts[fam.name]
		if count < minExamples {
			continue
		}
		confidence := clamp01(0.5 + 0.1*float64(count))
		out = append(out, memory.CurrencyPattern{
			Pattern:      fam.name,
			ExampleCount: count,
			Confidence:   confidence,
		})
	}
	return out
}

// mergeCurrencyPatterns replaces an existing pattern with an incoming one
// sharing the same Pattern string only when the incoming confidence is
// strictly higher, mirroring the field mapping merge rule.
func mergeCurrencyPatterns(existing, incoming []memory.CurrencyPattern) []memory.CurrencyPattern {
	byPattern := make(map[string]memory.CurrencyPattern, len(existing))
	order := make([]string, 0, len(existing))
	for _, p := range existing {
		if _, ok := byPattern[p.Pattern]; !ok {
			order = append(order, p.Pattern)
		}
		byPattern[p.Pattern] = p
	}
	for _, p := range incoming {
		cur, ok := byPattern[p.Pattern]
		if !ok {
			order = append(order, p.Pattern)
			byPattern[p.Pattern] = p
			continue
		}
		if p.Confidence > cur.Confidence {
			byPattern[p.Pattern] = p
		}
	}
	out := make([]memory.CurrencyPattern, 0, len(order))
	for _, pat := range order {
		out = append(out, byPattern[pat])
	}
	return out
}
