package compiler

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
)

// CompiledLine is the result of compiling one invoice line: the XML fragment
// plus the derived net and tax amounts the document compiler accumulates.
type CompiledLine struct {
	Fragment *etree.Element
	Net      decimal.Decimal
	Tax      decimal.Decimal
	Warnings []string
}

// CompileLine converts one line item into its IncludedSupplyChainTradeLineItem
// fragment. Net and tax are always recomputed here from quantity, unit price
// and rate; caller-supplied totals are never trusted, so line and header
// figures reconcile by construction.
//
// Compilation is total: a blank description falls back to "Item" and negative
// amounts are defaulted to zero with a warning, never a failure.
func CompileLine(item model.LineItem, lineNumber int, unitCode string) CompiledLine {
	var warnings []string

	qty := item.Quantity
	if qty.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("line %d: negative quantity %s defaulted to 0", lineNumber, qty))
		qty = money.Zero
	}
	price := item.UnitPrice
	if price.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("line %d: negative unit price %s defaulted to 0", lineNumber, price))
		price = money.Zero
	}

	// net = round(qty * price, 2); tax = round(net * rate/100, 2).
	// Each figure is rounded exactly once.
	net := money.Mul(qty, price)
	tax := money.Mul(net, money.RateFraction(item.VATPercent))

	name := item.Description
	if name == "" {
		warnings = append(warnings, fmt.Sprintf("line %d: blank description defaulted to %q", lineNumber, model.DefaultItemName))
		name = model.DefaultItemName
	}

	line := etree.NewElement("ram:IncludedSupplyChainTradeLineItem")

	doc := line.CreateElement("ram:AssociatedDocumentLineDocument")
	doc.CreateElement("ram:LineID").SetText(strconv.Itoa(lineNumber))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	// GlobalID precedes Name in the schema and is emitted only when both the
	// identifier and its scheme are supplied.
	if item.GlobalID != "" && item.GlobalIDScheme != "" {
		gid := product.CreateElement("ram:GlobalID")
		gid.CreateAttr("schemeID", item.GlobalIDScheme)
		gid.SetText(item.GlobalID)
	}
	product.CreateElement("ram:Name").SetText(name)

	agreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
	netPrice := agreement.CreateElement("ram:NetPriceProductTradePrice")
	netPrice.CreateElement("ram:ChargeAmount").SetText(money.ToXMLDecimal(price))

	delivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
	billed := delivery.CreateElement("ram:BilledQuantity")
	billed.CreateAttr("unitCode", unitCode)
	billed.SetText(money.ToXMLDecimal(qty))

	settlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	tradeTax := settlement.CreateElement("ram:ApplicableTradeTax")
	tradeTax.CreateElement("ram:TypeCode").SetText(taxTypeVAT)
	tradeTax.CreateElement("ram:CategoryCode").SetText(taxCategoryStandard)
	tradeTax.CreateElement("ram:RateApplicablePercent").SetText(money.ToXMLDecimal(item.VATPercent))

	// Basic profile repeats only the net total at line level, not the tax.
	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	summation.CreateElement("ram:LineTotalAmount").SetText(money.ToXMLDecimal(net))

	return CompiledLine{Fragment: line, Net: net, Tax: tax, Warnings: warnings}
}
