package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

func fieldMappingFixture(target, source string, confidence float64) []memory.FieldMapping {
	return []memory.FieldMapping{
		{SourceField: source, TargetField: target, Confidence: confidence},
	}
}

func TestDetectFieldMappings_GermanTable(t *testing.T) {
	invoices := []invoice.Invoice{
		{
			ExtractedFields: []invoice.ExtractedField{
				{Name: "Rechnungsdatum", Value: "01.03.2026", Confidence: 0.9},
				{Name: "Rechnungsnummer", Value: "RE-1001", Confidence: 0.95},
				{Name: "Gesamtbetrag", Value: "119,00 €", Confidence: 0.85},
			},
		},
	}

	mappings := detectFieldMappings(invoices, 0.2)

	byTarget := make(map[string]string)
	for _, m := range mappings {
		byTarget[m.TargetField] = m.TransformationRule.Type
	}

	assert.Equal(t, "DATE_PARSING", byTarget["invoiceDate"])
	assert.Equal(t, "DIRECT_COPY", byTarget["invoiceNumber"])
	assert.Equal(t, "DIRECT_COPY", byTarget["totalAmount"])

	for _, m := range mappings {
		assert.LessOrEqual(t, m.Confidence, 1.0)
		assert.NotEmpty(t, m.Examples)
	}
}

func TestDetectFieldMappings_NoMatch(t *testing.T) {
	invoices := []invoice.Invoice{
		{ExtractedFields: []invoice.ExtractedField{{Name: "SomeUnknownField", Value: "x", Confidence: 0.5}}},
	}
	assert.Empty(t, detectFieldMappings(invoices, 0.2))
}

func TestMergeFieldMappings_StrictlyHigherReplaces(t *testing.T) {
	existing := fieldMappingFixture("invoiceDate", "Rechnungsdatum", 0.7)
	incomingLower := fieldMappingFixture("invoiceDate", "Rechnungsdatum", 0.6)
	incomingHigher := fieldMappingFixture("invoiceDate", "Rechnungsdatum", 0.9)

	afterLower := mergeFieldMappings(existing, incomingLower)
	assert.Equal(t, 0.7, afterLower[0].Confidence)

	afterHigher := mergeFieldMappings(existing, incomingHigher)
	assert.Equal(t, 0.9, afterHigher[0].Confidence)
}
