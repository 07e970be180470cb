// Package recognizer implements the Vendor pattern recognizer of spec
// §4.4: it turns a vendor's raw and historical invoices into a
// VendorMemory (field mappings, VAT behavior, currency and date formats),
// strictly isolated per vendor.
package recognizer
