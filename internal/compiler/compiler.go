// Package compiler turns a normalized invoice record into a schema-valid
// Factur-X / ZUGFeRD CrossIndustryInvoice XML document.
//
// The compile is a pure, single-pass computation: one invoice in, one XML
// byte string out, no I/O and no shared state, so a Compiler is safe for
// concurrent use. Element ordering, attribute presence and numeric
// formatting follow the CII schema; the only mutable state is the running
// net/tax accumulation across the line loop, local to one call.
package compiler

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
)

// Namespace URNs for the fixed prefixes. Prefixes are declared on the root
// and never auto-generated.
const (
	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// Guideline URNs identifying the targeted profile.
const (
	guidelineEN16931 = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:en16931"
	guidelineBasic   = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"
)

// Fixed code-list values.
const (
	typeCodeCommercialInvoice = "380" // UNTDID 1001
	dateFormatCCYYMMDD        = "102" // UNTDID 2379
	paymentMeansSEPACredit    = "58"  // UNTDID 4461
	refTypeInvoicingDataSheet = "130" // UNTDID 1153
	taxTypeVAT                = "VAT"
	taxCategoryStandard       = "S"
)

// Result carries the serialized document and any leniency warnings emitted
// while defaults were substituted for missing or malformed fields.
type Result struct {
	XML      []byte
	Warnings []string
}

// Compiler compiles invoices for one configured profile.
type Compiler struct {
	profile model.Profile
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithProfile selects the Factur-X conformance profile (default EN16931).
func WithProfile(p model.Profile) Option {
	return func(c *Compiler) { c.profile = p }
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{profile: model.ProfileEN16931}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateXML compiles the invoice and returns the XML text. It is the
// single public entry point used by the API and CLI layers.
func (c *Compiler) GenerateXML(inv *model.Invoice) (string, error) {
	res, err := c.Compile(inv)
	if err != nil {
		return "", err
	}
	return string(res.XML), nil
}

// Compile builds and serializes the full CrossIndustryInvoice document.
// The emission sequence is schema-mandated and must not be reordered:
// document context, header, trade transaction (lines, agreement, delivery,
// settlement). Output is byte-for-byte deterministic for identical input.
func (c *Compiler) Compile(inv *model.Invoice) (*Result, error) {
	if inv == nil {
		return nil, model.NewSerializationError("compile", "nil invoice", nil)
	}

	var warnings []string
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", nsRSM)
	root.CreateAttr("xmlns:ram", nsRAM)
	root.CreateAttr("xmlns:qdt", nsQDT)
	root.CreateAttr("xmlns:udt", nsUDT)

	c.writeContext(root)
	warnings = append(warnings, c.writeHeader(root, inv)...)

	transaction := root.CreateElement("rsm:SupplyChainTradeTransaction")

	// Line items first, accumulating running totals. Numbering is 1-based
	// and sequential regardless of any caller-supplied identifiers.
	unitCode := inv.UnitCodeOrDefault()
	netTotal := money.Zero
	taxTotal := money.Zero
	for i, item := range inv.Items {
		line := CompileLine(item, i+1, unitCode)
		transaction.AddChild(line.Fragment)
		netTotal = netTotal.Add(line.Net)
		taxTotal = taxTotal.Add(line.Tax)
		warnings = append(warnings, line.Warnings...)
	}

	warnings = append(warnings, c.writeAgreement(transaction, inv)...)
	c.writeDelivery(transaction, inv)
	c.writeSettlement(transaction, inv, netTotal, taxTotal)

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, model.NewSerializationError("write", "failed to serialize invoice document", err)
	}
	return &Result{XML: out, Warnings: warnings}, nil
}

// writeContext emits the document context with the guideline URN that
// identifies the profile. Configuration, not caller input.
func (c *Compiler) writeContext(root *etree.Element) {
	guideline := guidelineEN16931
	if c.profile == model.ProfileBasic {
		guideline = guidelineBasic
	}
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	param := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	param.CreateElement("ram:ID").SetText(guideline)
}

func (c *Compiler) writeHeader(root *etree.Element, inv *model.Invoice) []string {
	var warnings []string
	header := root.CreateElement("rsm:ExchangedDocument")

	id := inv.ID
	if id == "" {
		id = "INV-001"
		warnings = append(warnings, "missing invoice ID defaulted to INV-001")
	}
	header.CreateElement("ram:ID").SetText(id)
	header.CreateElement("ram:TypeCode").SetText(typeCodeCommercialInvoice)

	issue := header.CreateElement("ram:IssueDateTime")
	writeDateTimeString(issue, inv.IssueDate)

	if inv.Subject != "" {
		note := header.CreateElement("ram:IncludedNote")
		note.CreateElement("ram:Content").SetText(inv.Subject)
	}
	return warnings
}

// writeAgreement emits seller, optional project/order references and buyer.
func (c *Compiler) writeAgreement(transaction *etree.Element, inv *model.Invoice) []string {
	var warnings []string
	agreement := transaction.CreateElement("ram:ApplicableHeaderTradeAgreement")

	sellerName := inv.Seller.Name
	if sellerName == "" {
		sellerName = model.DefaultSellerName
		warnings = append(warnings, fmt.Sprintf("missing seller name defaulted to %q", model.DefaultSellerName))
	}
	seller := agreement.CreateElement("ram:SellerTradeParty")
	seller.CreateElement("ram:Name").SetText(sellerName)
	writePostalAddress(seller, inv.Seller.AddressLines)
	if reg := ClassifyTaxID(inv.Seller.TaxID); reg != nil {
		taxReg := seller.CreateElement("ram:SpecifiedTaxRegistration")
		regID := taxReg.CreateElement("ram:ID")
		// Only a VAT registration carries a schemeID attribute; a fiscal
		// code with one is a schema violation.
		if reg.Scheme == SchemeVAT {
			regID.CreateAttr("schemeID", SchemeVAT)
		}
		regID.SetText(reg.ID)
	}

	if inv.ProjectReference != "" {
		ref := agreement.CreateElement("ram:AdditionalReferencedDocument")
		ref.CreateElement("ram:IssuerAssignedID").SetText(inv.ProjectReference)
		ref.CreateElement("ram:TypeCode").SetText(refTypeInvoicingDataSheet)
	}
	if inv.OrderReference != "" {
		order := agreement.CreateElement("ram:BuyerOrderReferencedDocument")
		order.CreateElement("ram:IssuerAssignedID").SetText(inv.OrderReference)
	}

	buyerName := inv.Buyer.Name
	if buyerName == "" {
		buyerName = model.DefaultBuyerName
		warnings = append(warnings, fmt.Sprintf("missing buyer name defaulted to %q", model.DefaultBuyerName))
	}
	buyer := agreement.CreateElement("ram:BuyerTradeParty")
	if inv.Buyer.CustomerID != "" {
		// Buyer ID is a plain identifier, no scheme attribute.
		buyer.CreateElement("ram:ID").SetText(inv.Buyer.CustomerID)
	}
	buyer.CreateElement("ram:Name").SetText(buyerName)
	writePostalAddress(buyer, inv.Buyer.AddressLines)

	return warnings
}

func (c *Compiler) writeDelivery(transaction *etree.Element, inv *model.Invoice) {
	delivery := transaction.CreateElement("ram:ApplicableHeaderTradeDelivery")
	if occurrence, ok := inv.OccurrenceDate(); ok {
		event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
		dt := event.CreateElement("ram:OccurrenceDateTime")
		writeDateTimeString(dt, occurrence)
	}
}

func (c *Compiler) writeSettlement(transaction *etree.Element, inv *model.Invoice, netTotal, taxTotal decimal.Decimal) {
	currency := inv.CurrencyOrDefault()
	settlement := transaction.CreateElement("ram:ApplicableHeaderTradeSettlement")
	settlement.CreateElement("ram:InvoiceCurrencyCode").SetText(currency)

	// Payment means only when an IBAN exists; an empty block is a defect.
	if inv.Payment.IBAN != "" {
		means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
		means.CreateElement("ram:TypeCode").SetText(paymentMeansSEPACredit)
		account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
		account.CreateElement("ram:IBANID").SetText(inv.Payment.IBAN)
		if inv.Payment.BIC != "" {
			institution := means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution")
			institution.CreateElement("ram:BICID").SetText(inv.Payment.BIC)
		}
	}

	// Header tax breakdown. Child order is schema-mandated: CalculatedAmount,
	// TypeCode, BasisAmount, CategoryCode, RateApplicablePercent.
	tradeTax := settlement.CreateElement("ram:ApplicableTradeTax")
	tradeTax.CreateElement("ram:CalculatedAmount").SetText(money.ToXMLDecimal(taxTotal))
	tradeTax.CreateElement("ram:TypeCode").SetText(taxTypeVAT)
	tradeTax.CreateElement("ram:BasisAmount").SetText(money.ToXMLDecimal(netTotal))
	tradeTax.CreateElement("ram:CategoryCode").SetText(taxCategoryStandard)
	tradeTax.CreateElement("ram:RateApplicablePercent").SetText(money.ToXMLDecimal(headerTaxRate(inv)))

	terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
	due := terms.CreateElement("ram:DueDateDateTime")
	writeDateTimeString(due, inv.EffectiveDueDate())

	// Totals are rounded once before summation so line and header figures
	// reconcile exactly. Due amount always equals the grand total.
	taxBasis := money.Round(netTotal)
	tax := money.Round(taxTotal)
	grand := taxBasis.Add(tax)

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	summation.CreateElement("ram:LineTotalAmount").SetText(money.ToXMLDecimal(netTotal))
	summation.CreateElement("ram:ChargeTotalAmount").SetText("0.00")
	summation.CreateElement("ram:AllowanceTotalAmount").SetText("0.00")
	summation.CreateElement("ram:TaxBasisTotalAmount").SetText(money.ToXMLDecimal(taxBasis))
	taxTotalEl := summation.CreateElement("ram:TaxTotalAmount")
	taxTotalEl.CreateAttr("currencyID", currency)
	taxTotalEl.SetText(money.ToXMLDecimal(tax))
	summation.CreateElement("ram:GrandTotalAmount").SetText(money.ToXMLDecimal(grand))
	summation.CreateElement("ram:DuePayableAmount").SetText(money.ToXMLDecimal(grand))
}

// headerTaxRate is the single Standard-category rate shown in the header
// breakdown: the first line's rate, or the 19% default on an empty invoice.
func headerTaxRate(inv *model.Invoice) decimal.Decimal {
	if len(inv.Items) > 0 {
		return inv.Items[0].VATPercent
	}
	return decimal.NewFromFloat(model.DefaultVATPercent)
}

// writePostalAddress emits the postal address derived from free-text lines.
// Empty components are suppressed rather than emitted blank.
func writePostalAddress(party *etree.Element, lines []string) {
	split := SplitAddressLines(lines)
	addr := party.CreateElement("ram:PostalTradeAddress")
	if split.Postcode != "" {
		addr.CreateElement("ram:PostcodeCode").SetText(split.Postcode)
	}
	if split.LineOne != "" {
		addr.CreateElement("ram:LineOne").SetText(split.LineOne)
	}
	if split.City != "" {
		addr.CreateElement("ram:CityName").SetText(split.City)
	}
	addr.CreateElement("ram:CountryID").SetText(model.DefaultCountryID)
}

// writeDateTimeString emits the qualified date child with the fixed
// CCYYMMDD format code.
func writeDateTimeString(parent *etree.Element, t time.Time) {
	dts := parent.CreateElement("udt:DateTimeString")
	dts.CreateAttr("format", dateFormatCCYYMMDD)
	dts.SetText(t.Format("20060102"))
}
