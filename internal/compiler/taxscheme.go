package compiler

import (
	"strings"
	"unicode"
)

// Tax registration scheme codes (UNTDID 1153 / EN16931 usage).
const (
	// SchemeVAT marks a VAT registration (e.g. "DE123456789").
	SchemeVAT = "VA"
	// SchemeFiscal marks a local fiscal/tax office number (e.g. "12/345/67890").
	SchemeFiscal = "FC"
)

// TaxRegistration is a classified tax identifier ready for emission.
type TaxRegistration struct {
	ID     string
	Scheme string
}

// ClassifyTaxID normalizes a free-text tax identifier and decides whether it
// is a VAT ID or a local fiscal code. Returns nil for empty/whitespace input,
// meaning no tax registration is emitted at all.
//
// The heuristic: after stripping all whitespace, an identifier starting with
// two letters is a VAT ID (country-prefixed per ISO 3166), anything else is a
// fiscal code. Only the VA scheme carries a schemeID attribute on the
// serialized element; emitting one for FC violates the schema.
func ClassifyTaxID(raw string) *TaxRegistration {
	cleaned := strings.Join(strings.Fields(raw), "")
	if cleaned == "" {
		return nil
	}

	runes := []rune(cleaned)
	if len(runes) >= 2 && unicode.IsLetter(runes[0]) && unicode.IsLetter(runes[1]) {
		return &TaxRegistration{ID: cleaned, Scheme: SchemeVAT}
	}
	return &TaxRegistration{ID: cleaned, Scheme: SchemeFiscal}
}
