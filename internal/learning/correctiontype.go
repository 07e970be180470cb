package learning

// correctionTypeFor maps a field name to the correctionType taxonomy of
// spec §4.5.
func correctionTypeFor(field string) string {
	switch field {
	case "totalAmount":
		return "PRICE"
	case "quantity":
		return "QUANTITY"
	case "serviceDate", "invoiceDate", "dueDate":
		return "DATE"
	case "currency":
		return "CURRENCY"
	case "vatAmount":
		return "VAT"
	default:
		return "FIELD_MAPPING"
	}
}
