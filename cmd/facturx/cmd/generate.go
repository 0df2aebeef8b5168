package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/compiler"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/server"
	"github.com/rezonia/facturx/internal/zugferd"
)

var (
	generateOutput  string
	generatePDF     bool
	generateZUGFeRD bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <invoice.json>...",
	Short: "Generate Factur-X output from invoice descriptions",
	Long: `Generate reads JSON invoice descriptions and writes the Factur-X XML,
the visual PDF, or the hybrid ZUGFeRD PDF with the XML embedded.

Examples:
  # XML next to the input file
  facturx generate invoice.json

  # Visual PDF only
  facturx generate invoice.json --pdf -o invoice.pdf

  # Hybrid ZUGFeRD document
  facturx generate invoice.json --zugferd

  # Several invoices at once
  facturx generate january/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: derived from input name)")
	generateCmd.Flags().BoolVar(&generatePDF, "pdf", false, "Render the visual PDF instead of XML")
	generateCmd.Flags().BoolVar(&generateZUGFeRD, "zugferd", false, "Produce the hybrid PDF with embedded XML")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generatePDF && generateZUGFeRD {
		return fmt.Errorf("--pdf and --zugferd are mutually exclusive")
	}
	if generateOutput != "" && len(args) > 1 {
		return fmt.Errorf("--output requires a single input file")
	}

	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	comp := compiler.New(compiler.WithProfile(prof))
	renderer := pdf.NewRenderer()

	for _, input := range args {
		if err := generateOne(comp, renderer, input); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	}
	return nil
}

func generateOne(comp *compiler.Compiler, renderer *pdf.Renderer, input string) error {
	inv, err := loadInvoice(input)
	if err != nil {
		return err
	}

	var out []byte
	ext := ".xml"

	switch {
	case generatePDF:
		ext = ".pdf"
		out, err = renderer.Render(inv)
		if err != nil {
			return err
		}

	case generateZUGFeRD:
		ext = ".pdf"
		result, err := comp.Compile(inv)
		if err != nil {
			return err
		}
		reportWarnings(result.Warnings)
		pdfData, err := renderer.Render(inv)
		if err != nil {
			return err
		}
		out, err = zugferd.Attach(pdfData, result.XML)
		if err != nil {
			return err
		}

	default:
		result, err := comp.Compile(inv)
		if err != nil {
			return err
		}
		reportWarnings(result.Warnings)
		out = result.XML
	}

	target := generateOutput
	if target == "" {
		target = strings.TrimSuffix(input, ".json") + ext
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	printVerbose("wrote %d bytes to %s\n", len(out), target)
	fmt.Println(target)
	return nil
}

// loadInvoice reads a JSON invoice description using the same payload
// format the HTTP API accepts.
func loadInvoice(path string) (*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var req server.InvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return req.Invoice()
}

func parseProfile(s string) (model.Profile, error) {
	switch s {
	case "", "en16931":
		return model.ProfileEN16931, nil
	case "basic":
		return model.ProfileBasic, nil
	default:
		return "", fmt.Errorf("unknown profile %q (expected en16931 or basic)", s)
	}
}

func reportWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
