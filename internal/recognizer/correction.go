package recognizer

// Correction is one human correction supplied alongside a vendor's
// invoices, used to derive candidate field mappings (spec §4.4's
// "corrections-derived mappings" sub-task).
type Correction struct {
	Field          string
	OriginalValue  string
	CorrectedValue string
}
