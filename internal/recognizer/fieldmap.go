package recognizer

import (
	"sort"
	"strings"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// germanFieldMap is the known table of source->target field names, spec
// §4.4. Keys are lowercase for case-insensitive substring matching.
var germanFieldMap = map[string]string{
	"leistungsdatum":   "serviceDate",
	"rechnungsdatum":   "invoiceDate",
	"fälligkeitsdatum": "dueDate",
	"rechnungsnummer":  "invoiceNumber",
	"bestellnummer":    "purchaseOrderNumber",
	"gesamtbetrag":     "totalAmount",
	"mwst":             "vatAmount",
	"nettobetrag":      "netAmount",
}

// dateTargets names the target fields whose transformation is date
// parsing rather than a direct copy.
var dateTargets = map[string]bool{
	"serviceDate": true,
	"invoiceDate": true,
	"dueDate":     true,
}

const maxExamplesPerMapping = 5

// detectFieldMappings implements spec §4.4's German field mapping
// detection: a case-insensitive substring match of the known table against
// each extracted field name, with final confidence = field.confidence +
// vendorSpecificBoost, clamped to 1.
func detectFieldMappings(invoices []invoice.Invoice, boost float64) []memory.FieldMapping {
	byTarget := make(map[string]*memory.FieldMapping)

	for _, inv := range invoices {
		for _, field := range inv.ExtractedFields {
			lower := strings.ToLower(field.Name)
			for sourceKey, target := range germanFieldMap {
				if !strings.Contains(lower, sourceKey) {
					continue
				}

				confidence := clamp01(field.Confidence + boost)
				ruleType := "DIRECT_COPY"
				if dateTargets[target] {
					ruleType = "DATE_PARSING"
				}

				fm, ok := byTarget[target]
				if !ok {
					fm = &memory.FieldMapping{
						SourceField:        field.Name,
						TargetField:        target,
						TransformationRule: memory.TransformationRule{Type: ruleType},
						Confidence:         confidence,
					}
					byTarget[target] = fm
				} else if confidence > fm.Confidence {
					fm.Confidence = confidence
					fm.SourceField = field.Name
				}

				if len(fm.Examples) < maxExamplesPerMapping {
					fm.Examples = append(fm.Examples, memory.Example{
						SourceValue: field.Value,
						TargetValue: field.Value,
					})
				}
			}
		}
	}

	return sortedMappings(byTarget)
}

// detectCorrectionMappings implements spec §4.4's "corrections-derived
// mappings" sub-task: each human correction becomes a candidate mapping
// with confidence base 0.5 plus the vendor-specific boost.
func detectCorrectionMappings(corrections []Correction, boost float64) []memory.FieldMapping {
	byTarget := make(map[string]*memory.FieldMapping)

	for _, c := range corrections {
		if c.Field == "" {
			continue
		}
		confidence := clamp01(0.5 + boost)

		fm, ok := byTarget[c.Field]
		if !ok {
			byTarget[c.Field] = &memory.FieldMapping{
				SourceField:        c.Field,
				TargetField:        c.Field,
				TransformationRule: memory.TransformationRule{Type: "DIRECT_COPY"},
				Confidence:         confidence,
				Examples: []memory.Example{
					{SourceValue: c.OriginalValue, TargetValue: c.CorrectedValue},
				},
			}
			continue
		}
		if confidence > fm.Confidence {
			fm.Confidence = confidence
		}
		if len(fm.Examples) < maxExamplesPerMapping {
			fm.Examples = append(fm.Examples, memory.Example{
				SourceValue: c.OriginalValue, TargetValue: c.CorrectedValue,
			})
		}
	}

	return sortedMappings(byTarget)
}

func sortedMappings(byTarget map[string]*memory.FieldMapping) []memory.FieldMapping {
	out := make([]memory.FieldMapping, 0, len(byTarget))
	for _, fm := range byTarget {
		out = append(out, *fm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetField < out[j].TargetField })
	return out
}

// mergeFieldMappings implements spec §4.4's merging rule: a new entry
// replaces an existing one (matched by TargetField) only if its confidence
// is strictly higher.
func mergeFieldMappings(existing, incoming []memory.FieldMapping) []memory.FieldMapping {
	byTarget := make(map[string]memory.FieldMapping, len(existing))
	order := make([]string, 0, len(existing))
	for _, fm := range existing {
		if _, ok := byTarget[fm.TargetField]; !ok {
			order = append(order, fm.TargetField)
		}
		byTarget[fm.TargetField] = fm
	}

	for _, fm := range incoming {
		current, ok := byTarget[fm.TargetField]
		if !ok {
			order = append(order, fm.TargetField)
			byTarget[fm.TargetField] = fm
			continue
		}
		if fm.Confidence > current.Confidence {
			byTarget[fm.TargetField] = fm
		}
	}

	out := make([]memory.FieldMapping, 0, len(order))
	for _, target := range order {
		out = append(out, byTarget[target])
	}
	return out
}
