// Package facturx provides a public API for generating Factur-X / ZUGFeRD
// electronic invoices.
//
// The package compiles a normalized invoice into EN 16931 compliant
// Cross-Industry-Invoice XML, renders the matching visual PDF, and can
// embed the XML into the PDF to form a hybrid ZUGFeRD document.
//
// Example usage:
//
//	gen := facturx.NewGenerator()
//	xml, err := gen.GenerateXML(invoice)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(xml))
package facturx

import (
	"github.com/rezonia/facturx/internal/compiler"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/zugferd"
)

// Re-export core types for public API
type (
	Invoice      = model.Invoice
	LineItem     = model.LineItem
	Party        = model.Party
	PaymentMeans = model.PaymentMeans
	FooterBlock  = model.FooterBlock
	DatePeriod   = model.DatePeriod
	Profile      = model.Profile
)

// Re-export profile constants
const (
	ProfileEN16931 = model.ProfileEN16931
	ProfileBasic   = model.ProfileBasic
)

// Re-export error types
type (
	ValidationError    = model.ValidationError
	SerializationError = model.SerializationError
	RenderError        = model.RenderError
)

// Result carries the compiled XML and any compile-time warnings.
type Result = compiler.Result

// Generator produces the three output renditions of an invoice.
type Generator struct {
	compiler *compiler.Compiler
	renderer *pdf.Renderer
}

// Option configures a Generator
type Option func(*options)

type options struct {
	profile Profile
}

// WithProfile selects the Factur-X conformance profile (default EN 16931).
func WithProfile(p Profile) Option {
	return func(o *options) { o.profile = p }
}

// NewGenerator creates a generator with the given options
func NewGenerator(opts ...Option) *Generator {
	o := options{profile: ProfileEN16931}
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{
		compiler: compiler.New(compiler.WithProfile(o.profile)),
		renderer: pdf.NewRenderer(),
	}
}

// GenerateXML compiles the invoice into Factur-X XML bytes.
func (g *Generator) GenerateXML(inv *Invoice) ([]byte, error) {
	result, err := g.compiler.Compile(inv)
	if err != nil {
		return nil, err
	}
	return result.XML, nil
}

// Compile compiles the invoice and returns the XML together with warnings.
func (g *Generator) Compile(inv *Invoice) (*Result, error) {
	return g.compiler.Compile(inv)
}

// GeneratePDF renders the visual invoice PDF.
func (g *Generator) GeneratePDF(inv *Invoice) ([]byte, error) {
	return g.renderer.Render(inv)
}

// GenerateZUGFeRD renders the PDF and embeds the compiled XML into it.
func (g *Generator) GenerateZUGFeRD(inv *Invoice) ([]byte, error) {
	xmlData, err := g.GenerateXML(inv)
	if err != nil {
		return nil, err
	}
	pdfData, err := g.renderer.Render(inv)
	if err != nil {
		return nil, err
	}
	return zugferd.Attach(pdfData, xmlData)
}
