// Package pdf renders the human-readable side of an invoice with Maroto v2.
//
// A4 page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  Absender (small)              RECHNUNG                      │
//	│  Empfänger block               Rechnungsnr. / Datum / Fällig │
//	│  ─────────────────────────────────────────────────────────── │
//	│  Betreff (optional)                                          │
//	│  TABELLE: Pos | Beschreibung | Menge | Einzelpreis | Gesamt  │
//	│  ─────────────────────────────────────────────────────────── │
//	│  Summe Netto / MwSt. / Gesamtbetrag                          │
//	│  ─────────────────────────────────────────────────────────── │
//	│  FOOTER: drei Spalten + Bankverbindung                       │
//	└─────────────────────────────────────────────────────────────┘
//
// The PDF is cosmetic only. All amounts are recomputed here with the same
// rounding policy the XML compiler uses, so both renditions always agree.
package pdf

import (
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
)

var (
	colorDark = &props.Color{Red: 40, Green: 40, Blue: 40}
	colorGray = &props.Color{Red: 120, Green: 120, Blue: 120}
)

// Renderer turns a normalized invoice into PDF bytes.
type Renderer struct{}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// Render generates the visual invoice PDF.
func (r *Renderer) Render(inv *model.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, model.NewRenderError("pdf", "invoice is nil", nil)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(20).WithRightMargin(20).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Rechnung "+inv.ID, true).
		WithAuthor(inv.Seller.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(addressRow(inv))
	m.AddRows(line.NewRow(4, props.Line{Color: colorGray, Thickness: 0.3}))

	if inv.Subject != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New(inv.Subject, props.Text{Style: fontstyle.Bold, Size: 11, Top: 1}),
		)))
	}

	m.AddRows(tableHeaderRow())
	for _, itemRow := range tableItemRows(inv) {
		m.AddRows(itemRow)
	}

	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(6))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, model.NewRenderError("pdf", "generate document", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: RECHNUNG title on the right, seller name on the left.
func headerRow(inv *model.Invoice) core.Row {
	seller := inv.Seller.Name
	if seller == "" {
		seller = model.DefaultSellerName
	}

	return row.New(16).Add(
		col.New(7).Add(
			text.New(seller, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorDark, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New("RECHNUNG", props.Text{
				Style: fontstyle.Bold, Size: 16, Align: align.Right,
				Color: colorDark, Top: 1,
			}),
		),
	)
}

// addressRow: Absender one-liner plus Empfänger block left, metadata right.
func addressRow(inv *model.Invoice) core.Row {
	buyer := inv.Buyer.Name
	if buyer == "" {
		buyer = model.DefaultBuyerName
	}

	left := []core.Component{
		text.New(absenderLine(inv.Seller), props.Text{
			Size: 7, Color: colorGray, Top: 1,
		}),
		text.New("Empfänger:", props.Text{
			Size: 8, Color: colorGray, Top: 8,
		}),
		text.New(buyer, props.Text{Style: fontstyle.Bold, Size: 10, Top: 12}),
	}
	top := 17.0
	for _, addrLine := range inv.Buyer.AddressLines {
		left = append(left, text.New(addrLine, props.Text{Size: 9, Top: top}))
		top += 4.5
	}

	right := []core.Component{
		metaLine("Rechnungsnr.:", inv.ID, 1),
		metaLine("Datum:", inv.IssueDate.Format("02.01.2006"), 6),
		metaLine("Fällig am:", inv.EffectiveDueDate().Format("02.01.2006"), 11),
	}
	if occ, ok := inv.OccurrenceDate(); ok {
		right = append(right, metaLine("Leistungsdatum:", occ.Format("02.01.2006"), 16))
	}
	if inv.ProjectReference != "" {
		right = append(right, metaLine("Projekt:", inv.ProjectReference, 21))
	}

	return row.New(42).Add(
		col.New(7).Add(left...),
		col.New(5).Add(right...),
	)
}

func metaLine(label, value string, top float64) core.Component {
	return text.New(label+" "+value, props.Text{
		Size: 9, Align: align.Right, Top: top,
	})
}

// absenderLine compresses the seller address into the single return-address
// line German letters carry above the recipient window.
func absenderLine(seller model.Party) string {
	parts := make([]string, 0, len(seller.AddressLines)+1)
	if seller.Name != "" {
		parts = append(parts, seller.Name)
	}
	parts = append(parts, seller.AddressLines...)
	return strings.Join(parts, " · ")
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a,
			Color: colorDark, Top: 2,
		}))
	}
	return row.New(9).Add(
		h("Pos.", 1, align.Left),
		h("Beschreibung", 5, align.Left),
		h("Menge", 2, align.Right),
		h("Einzelpreis", 2, align.Right),
		h("Gesamt", 2, align.Right),
	)
}

func tableItemRows(inv *model.Invoice) []core.Row {
	rows := make([]core.Row, 0, len(inv.Items))
	for i, item := range inv.Items {
		desc := item.Description
		if desc == "" {
			desc = model.DefaultItemName
		}
		qty := money.ClampNonNegative(item.Quantity)
		price := money.ClampNonNegative(item.UnitPrice)
		net := money.Mul(qty, price)

		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 9, Top: 1})),
			col.New(5).Add(text.New(desc, props.Text{Size: 9, Top: 1})),
			col.New(2).Add(text.New(qty.String(), props.Text{Size: 9, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(money.DisplayAmount(price)+" €", props.Text{Size: 9, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(money.DisplayAmount(net)+" €", props.Text{Size: 9, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

// totalsRow: Summe Netto, MwSt. and Gesamtbetrag, right-aligned.
func totalsRow(inv *model.Invoice) core.Row {
	net, tax, rate := Totals(inv)
	grand := net.Add(tax)

	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Top: top})
	}

	return row.New(20).Add(
		col.New(6),
		col.New(4).Add(
			label("Summe Netto:", 1),
			label("MwSt. "+rate.StringFixed(0)+" %:", 6),
			text.New("Gesamtbetrag:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 12,
			}),
		),
		col.New(2).Add(
			value(money.DisplayAmount(net)+" €", 1),
			value(money.DisplayAmount(tax)+" €", 6),
			text.New(money.DisplayAmount(grand)+" €", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 12,
			}),
		),
	)
}

// footerRows: the three free-text columns plus the bank line.
func footerRows(inv *model.Invoice) []core.Row {
	f := inv.Footer
	rows := []core.Row{
		row.New(16).Add(
			footerCol(f.Col1),
			footerCol(f.Col2),
			footerCol(f.Col3),
		),
	}

	if inv.Payment.IBAN != "" {
		bank := "IBAN: " + inv.Payment.IBAN
		if inv.Payment.BIC != "" {
			bank += "   BIC: " + inv.Payment.BIC
		}
		if f.BankName != "" {
			bank = f.BankName + "   " + bank
		}
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(bank, props.Text{Size: 7, Color: colorGray, Align: align.Center, Top: 1}),
		)))
	}
	return rows
}

func footerCol(content string) core.Col {
	c := col.New(4)
	top := 1.0
	for _, footerLine := range strings.Split(content, "\n") {
		if footerLine == "" {
			continue
		}
		c.Add(text.New(footerLine, props.Text{Size: 7, Color: colorGray, Top: top}))
		top += 3.5
	}
	return c
}

// Totals recomputes net, tax and the displayed VAT rate from the items with
// the shared rounding policy. The rate shown is the first line's rate, or
// the 19 percent default for an empty invoice.
func Totals(inv *model.Invoice) (net, tax, rate decimal.Decimal) {
	net, tax = money.Zero, money.Zero
	rate = decimal.NewFromFloat(model.DefaultVATPercent)
	for i, item := range inv.Items {
		if i == 0 {
			rate = item.VATPercent
		}
		lineNet := money.Mul(money.ClampNonNegative(item.Quantity), money.ClampNonNegative(item.UnitPrice))
		net = net.Add(lineNet)
		tax = tax.Add(money.Mul(lineNet, money.RateFraction(item.VATPercent)))
	}
	return money.Round(net), money.Round(tax), rate
}
