package recognizer

import (
	"regexp"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

type dateFormatFamily struct {
	format string
	re     *regexp.Regexp
}

var dateFormatFamilies = []dateFormatFamily{
	{format: "DD.MM.YYYY", re: regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)},
	{format: "DD.MM.YY", re: regexp.MustCompile(`^\d{2}\.\d{2}\.\d{2}$`)},
	{format: "DD/MM/YYYY", re: regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)},
	{format: "YYYY-MM-DD", re: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
}

var dateFieldNames = map[string]bool{
	"serviceDate": true,
	"invoiceDate": true,
	"dueDate":     true,
}

// detectDateFormats implements spec §4.4's date regex family detection,
// mirroring detectCurrencyPatterns but restricted to date-bearing fields.
func detectDateFormats(invoices []invoice.Invoice, minExamples int) []memory.DateFormatPattern {
	counts := make(map[string]int, len(dateFormatFamilies))

	for _, inv := range invoices {
		for _, field := range inv.ExtractedFields {
			if !dateFieldNames[field.Name] {
				continue
			}
			for _, fam := range dateFormatFamilies {
				if fam.re.MatchString(field.Value) {
					counts[fam.format]++
				}
			}
		}
	}

	var out []memory.DateFormatPattern
	for _, fam := range dateFormatFamilies {
		count := counts[fam.format]
		if count < minExamples {
			continue
		}
		confidence := clamp01(0.5 + 0.1*float64(count))
		out = append(out, memory.DateFormatPattern{
			Format:       fam.format,
			ExampleCount: count,
			Confidence:   confidence,
		})
	}
	return out
}

func mergeDateFormats(existing, incoming []memory.DateFormatPattern) []memory.DateFormatPattern {
	byFormat := make(map[string]memory.DateFormatPattern, len(existing))
	order := make([]string, 0, len(existing))
	for _, p := range existing {
		if _, ok := byFormat[p.Format]; !ok {
			order = append(order, p.Format)
		}
		byFormat[p.Format] = p
	}
	for _, p := range incoming {
		cur, ok := byFormat[p.Format]
		if !ok {
			order = append(order, p.Format)
			byFormat[p.Format] = p
			continue
		}
		if p.Confidence > cur.Confidence {
			byFormat[p.Format] = p
		}
	}
	out := make([]memory.DateFormatPattern, 0, len(order))
	for _, f := range order {
		out = append(out, byFormat[f])
	}
	return out
}
