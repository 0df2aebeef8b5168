// Package zugferd combines the visual PDF and the machine-readable XML into
// a single hybrid invoice file by embedding the XML as a PDF attachment.
package zugferd

import (
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rezonia/facturx/internal/model"
)

// AttachmentName is the conventional file name readers look for inside a
// Factur-X hybrid PDF.
const AttachmentName = "factur-x.xml"

// Attach embeds xmlData into pdfData and returns the combined PDF bytes.
// pdfcpu operates on files, so the work happens in a temporary directory
// that is removed before returning.
func Attach(pdfData, xmlData []byte) ([]byte, error) {
	if len(pdfData) == 0 {
		return nil, model.NewRenderError("zugferd", "pdf input is empty", nil)
	}
	if len(xmlData) == 0 {
		return nil, model.NewRenderError("zugferd", "xml input is empty", nil)
	}

	dir, err := os.MkdirTemp("", "zugferd-")
	if err != nil {
		return nil, model.NewRenderError("zugferd", "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "invoice.pdf")
	xmlPath := filepath.Join(dir, AttachmentName)
	outPath := filepath.Join(dir, "invoice-zugferd.pdf")

	if err := os.WriteFile(inPath, pdfData, 0o600); err != nil {
		return nil, model.NewRenderError("zugferd", "write pdf", err)
	}
	if err := os.WriteFile(xmlPath, xmlData, 0o600); err != nil {
		return nil, model.NewRenderError("zugferd", "write xml", err)
	}

	if err := api.AddAttachmentsFile(inPath, outPath, []string{xmlPath}, false, nil); err != nil {
		return nil, model.NewRenderError("zugferd", "embed attachment", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, model.NewRenderError("zugferd", "read result", err)
	}
	return out, nil
}
