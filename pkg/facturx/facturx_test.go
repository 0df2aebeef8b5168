package facturx_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/pkg/facturx"
)

func sampleInvoice() *facturx.Invoice {
	return &facturx.Invoice{
		ID:        "INV-2026-001",
		IssueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Seller: facturx.Party{
			Name:         "My Company GmbH",
			AddressLines: []string{"Main Street 1", "12345 Berlin"},
			TaxID:        "DE123456789",
		},
		Buyer: facturx.Party{Name: "Client Corp"},
		Items: []facturx.LineItem{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				VATPercent:  decimal.NewFromInt(19),
			},
		},
	}
}

func TestGenerateXML(t *testing.T) {
	xml, err := facturx.NewGenerator().GenerateXML(sampleInvoice())
	require.NoError(t, err)

	out := string(xml)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "rsm:CrossIndustryInvoice")
	assert.Contains(t, out, "1190.00")
}

func TestGenerateXML_BasicProfile(t *testing.T) {
	gen := facturx.NewGenerator(facturx.WithProfile(facturx.ProfileBasic))
	xml, err := gen.GenerateXML(sampleInvoice())
	require.NoError(t, err)

	assert.Contains(t, string(xml), "urn:factur-x.eu:1p0:basic")
}

func TestGeneratePDF(t *testing.T) {
	out, err := facturx.NewGenerator().GeneratePDF(sampleInvoice())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateZUGFeRD(t *testing.T) {
	out, err := facturx.NewGenerator().GenerateZUGFeRD(sampleInvoice())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestCompile_Warnings(t *testing.T) {
	inv := sampleInvoice()
	inv.Seller.Name = ""

	result, err := facturx.NewGenerator().Compile(inv)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
}
