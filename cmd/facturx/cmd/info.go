package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/money"
	"github.com/rezonia/facturx/internal/pdf"
)

var infoCmd = &cobra.Command{
	Use:   "info <invoice.json>",
	Short: "Show a summary of an invoice description",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	inv, err := loadInvoice(args[0])
	if err != nil {
		return err
	}

	net, tax, rate := pdf.Totals(inv)
	grand := net.Add(tax)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Invoice:\t%s\n", inv.ID)
	fmt.Fprintf(w, "Issue date:\t%s\n", inv.IssueDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Due date:\t%s\n", inv.EffectiveDueDate().Format("2006-01-02"))
	fmt.Fprintf(w, "Seller:\t%s\n", inv.Seller.Name)
	fmt.Fprintf(w, "Buyer:\t%s\n", inv.Buyer.Name)
	fmt.Fprintf(w, "Currency:\t%s\n", inv.CurrencyOrDefault())
	fmt.Fprintf(w, "Lines:\t%d\n", len(inv.Items))
	fmt.Fprintf(w, "Net total:\t%s\n", money.ToXMLDecimal(net))
	fmt.Fprintf(w, "VAT (%s%%):\t%s\n", rate.StringFixed(0), money.ToXMLDecimal(tax))
	fmt.Fprintf(w, "Grand total:\t%s\n", money.ToXMLDecimal(grand))
	return w.Flush()
}
