package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/compiler"
)

func TestClassifyTaxID_VAT(t *testing.T) {
	reg := compiler.ClassifyTaxID("DE123456789")
	require.NotNil(t, reg)
	assert.Equal(t, "DE123456789", reg.ID)
	assert.Equal(t, compiler.SchemeVAT, reg.Scheme)
}

func TestClassifyTaxID_FiscalCode(t *testing.T) {
	reg := compiler.ClassifyTaxID("12/345/67890")
	require.NotNil(t, reg)
	assert.Equal(t, "12/345/67890", reg.ID)
	assert.Equal(t, compiler.SchemeFiscal, reg.Scheme)
}

func TestClassifyTaxID_Empty(t *testing.T) {
	assert.Nil(t, compiler.ClassifyTaxID(""))
	assert.Nil(t, compiler.ClassifyTaxID("   \t "))
}

func TestClassifyTaxID_StripsWhitespace(t *testing.T) {
	reg := compiler.ClassifyTaxID("  DE 123 456 789 ")
	require.NotNil(t, reg)
	assert.Equal(t, "DE123456789", reg.ID)
	assert.Equal(t, compiler.SchemeVAT, reg.Scheme)
}

func TestClassifyTaxID_SingleLetterPrefix(t *testing.T) {
	// One leading letter is not enough for a VAT ID
	reg := compiler.ClassifyTaxID("D123456789")
	require.NotNil(t, reg)
	assert.Equal(t, compiler.SchemeFiscal, reg.Scheme)
}
