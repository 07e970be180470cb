package memory

// VendorPayload carries a vendor's learned field mappings, VAT behavior, and
// currency/date formats. payload.VendorID must equal context.VendorID
// (spec §3 invariant 2).
type VendorPayload struct {
	VendorID         string              `json:"vendorId"`
	FieldMappings    []FieldMapping      `json:"fieldMappings"`
	VATBehavior      VATBehavior         `json:"vatBehavior"`
	CurrencyPatterns []CurrencyPattern   `json:"currencyPatterns"`
	DateFormats      []DateFormatPattern `json:"dateFormats"`
}

// FieldMapping records that a vendor's SourceField extracts into TargetField
// via TransformationRule, with up to a handful of Examples retained for
// inspection.
type FieldMapping struct {
	SourceField        string             `json:"sourceField"`
	TargetField        string             `json:"targetField"`
	TransformationRule TransformationRule `json:"transformationRule"`
	Confidence         float64            `json:"confidence"`
	Examples           []Example          `json:"examples"`
}

// TransformationRule describes how a raw extracted value becomes a
// normalized one. Type is a short tag such as "DATE_PARSING" or
// "DIRECT_COPY"; ValidationPattern, when set, is a regex the transformed
// value must match.
type TransformationRule struct {
	Type              string         `json:"type"`
	Parameters        map[string]any `json:"parameters,omitempty"`
	ValidationPattern *string        `json:"validationPattern,omitempty"`
}

// Example is a single observed source/target pair backing a FieldMapping.
type Example struct {
	SourceValue string `json:"sourceValue"`
	TargetValue string `json:"targetValue"`
	Context     string `json:"context,omitempty"`
}

// VATBehavior records whether a vendor's prices include VAT and the
// indicator phrases that led to that conclusion.
type VATBehavior struct {
	VATIncludedInPrices bool `json:"vatIncludedInPrices"`
	// DefaultVATRate is nil when no rate has been detected and non-nil
	// (possibly pointing at 0.0) once one has (open question 2).
	DefaultVATRate      *float64 `json:"defaultVatRate,omitempty"`
	InclusionIndicators []string `json:"vatInclusionIndicators,omitempty"`
	ExclusionIndicators []string `json:"vatExclusionIndicators,omitempty"`
}

// CurrencyPattern is a regex family recognized as identifying a currency
// amount in this vendor's invoices, retained once it has matched at least
// minExamplesForPattern times.
type CurrencyPattern struct {
	Pattern      string  `json:"pattern"`
	ExampleCount int     `json:"exampleCount"`
	Confidence   float64 `json:"confidence"`
}

// DateFormatPattern is a regex family recognized as this vendor's date
// format.
type DateFormatPattern struct {
	Format       string  `json:"format"`
	ExampleCount int     `json:"exampleCount"`
	Confidence   float64 `json:"confidence"`
}
