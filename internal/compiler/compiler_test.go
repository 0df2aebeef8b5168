package compiler_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/compiler"
	"github.com/rezonia/facturx/internal/model"
)

func testInvoice() *model.Invoice {
	return &model.Invoice{
		ID:        "INV-2026-001",
		IssueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Seller: model.Party{
			Name:         "My Company GmbH",
			AddressLines: []string{"Main Street 1", "12345 Berlin"},
			TaxID:        "DE123456789",
		},
		Buyer: model.Party{
			Name:         "Client Corp",
			AddressLines: []string{"Side Street 2", "54321 Hamburg"},
			CustomerID:   "CUST-42",
		},
		Payment: model.PaymentMeans{IBAN: "DE89370400440532013000", BIC: "COBADEFFXXX"},
		UnitCode: "HUR",
		Items: []model.LineItem{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				VATPercent:  decimal.NewFromInt(19),
			},
		},
	}
}

func compile(t *testing.T, inv *model.Invoice) *etree.Document {
	t.Helper()
	res, err := compiler.New().Compile(inv)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(res.XML))
	return doc
}

func TestCompile_DocumentShell(t *testing.T) {
	res, err := compiler.New().Compile(testInvoice())
	require.NoError(t, err)

	xml := string(res.XML)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`),
		"output must start with the XML declaration")
	assert.Contains(t, xml, "<rsm:CrossIndustryInvoice")
	assert.Contains(t, xml, `xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"`)
	assert.Contains(t, xml, `xmlns:ram="urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"`)
	assert.Contains(t, xml, `xmlns:udt="urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"`)
	assert.Contains(t, xml, `xmlns:qdt="urn:un:unece:uncefact:data:standard:QualifiedDataType:100"`)
	assert.Contains(t, xml, "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:en16931")
	assert.Empty(t, res.Warnings)
}

func TestCompile_BasicProfileGuideline(t *testing.T) {
	res, err := compiler.New(compiler.WithProfile(model.ProfileBasic)).Compile(testInvoice())
	require.NoError(t, err)

	assert.Contains(t, string(res.XML), "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic")
}

func TestCompile_Header(t *testing.T) {
	doc := compile(t, testInvoice())

	header := doc.FindElement("/rsm:CrossIndustryInvoice/rsm:ExchangedDocument")
	require.NotNil(t, header)
	assert.Equal(t, "INV-2026-001", header.FindElement("ram:ID").Text())
	assert.Equal(t, "380", header.FindElement("ram:TypeCode").Text())

	issue := header.FindElement("ram:IssueDateTime/udt:DateTimeString")
	require.NotNil(t, issue)
	assert.Equal(t, "102", issue.SelectAttrValue("format", ""))
	assert.Equal(t, "20260315", issue.Text())
}

func TestCompile_MonetarySummation(t *testing.T) {
	doc := compile(t, testInvoice())

	sum := doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	require.NotNil(t, sum)
	assert.Equal(t, "1000.00", sum.FindElement("ram:LineTotalAmount").Text())
	assert.Equal(t, "0.00", sum.FindElement("ram:ChargeTotalAmount").Text())
	assert.Equal(t, "0.00", sum.FindElement("ram:AllowanceTotalAmount").Text())
	assert.Equal(t, "1000.00", sum.FindElement("ram:TaxBasisTotalAmount").Text())

	taxTotal := sum.FindElement("ram:TaxTotalAmount")
	require.NotNil(t, taxTotal)
	assert.Equal(t, "190.00", taxTotal.Text())
	assert.Equal(t, "EUR", taxTotal.SelectAttrValue("currencyID", ""))

	assert.Equal(t, "1190.00", sum.FindElement("ram:GrandTotalAmount").Text())
	assert.Equal(t, "1190.00", sum.FindElement("ram:DuePayableAmount").Text())
}

func TestCompile_TaxBreakdownOrder(t *testing.T) {
	doc := compile(t, testInvoice())

	tax := doc.FindElement("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.NotNil(t, tax)

	var tags []string
	for _, child := range tax.ChildElements() {
		tags = append(tags, child.FullTag())
	}
	assert.Equal(t, []string{
		"ram:CalculatedAmount",
		"ram:TypeCode",
		"ram:BasisAmount",
		"ram:CategoryCode",
		"ram:RateApplicablePercent",
	}, tags)

	assert.Equal(t, "190.00", tax.FindElement("ram:CalculatedAmount").Text())
	assert.Equal(t, "1000.00", tax.FindElement("ram:BasisAmount").Text())
	assert.Equal(t, "S", tax.FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "19.00", tax.FindElement("ram:RateApplicablePercent").Text())
}

func TestCompile_DueDateDefaultsToFourteenDays(t *testing.T) {
	doc := compile(t, testInvoice())

	due := doc.FindElement("//ram:SpecifiedTradePaymentTerms/ram:DueDateDateTime/udt:DateTimeString")
	require.NotNil(t, due)
	assert.Equal(t, "20260329", due.Text())
}

func TestCompile_ExplicitDueDate(t *testing.T) {
	inv := testInvoice()
	due := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	inv.DueDate = &due

	doc := compile(t, inv)
	dds := doc.FindElement("//ram:SpecifiedTradePaymentTerms/ram:DueDateDateTime/udt:DateTimeString")
	require.NotNil(t, dds)
	assert.Equal(t, "20260430", dds.Text())
}

func TestCompile_DeliveryPeriodUsesStart(t *testing.T) {
	inv := testInvoice()
	inv.DeliveryPeriod = &model.DatePeriod{
		Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}

	doc := compile(t, inv)
	occ := doc.FindElement("//ram:ApplicableHeaderTradeDelivery/ram:ActualDeliverySupplyChainEvent/ram:OccurrenceDateTime/udt:DateTimeString")
	require.NotNil(t, occ)
	assert.Equal(t, "20260201", occ.Text())
}

func TestCompile_NoDeliveryDate(t *testing.T) {
	doc := compile(t, testInvoice())

	delivery := doc.FindElement("//ram:ApplicableHeaderTradeDelivery")
	require.NotNil(t, delivery)
	assert.Empty(t, delivery.ChildElements())
}

func TestCompile_SellerVATRegistration(t *testing.T) {
	doc := compile(t, testInvoice())

	reg := doc.FindElement("//ram:SellerTradeParty/ram:SpecifiedTaxRegistration/ram:ID")
	require.NotNil(t, reg)
	assert.Equal(t, "DE123456789", reg.Text())
	assert.Equal(t, "VA", reg.SelectAttrValue("schemeID", ""))
}

func TestCompile_FiscalCodeHasNoSchemeID(t *testing.T) {
	inv := testInvoice()
	inv.Seller.TaxID = "12/345/67890"

	doc := compile(t, inv)
	reg := doc.FindElement("//ram:SellerTradeParty/ram:SpecifiedTaxRegistration/ram:ID")
	require.NotNil(t, reg)
	assert.Equal(t, "12/345/67890", reg.Text())
	assert.Nil(t, reg.SelectAttr("schemeID"))
}

func TestCompile_NoTaxIDNoRegistration(t *testing.T) {
	inv := testInvoice()
	inv.Seller.TaxID = ""

	doc := compile(t, inv)
	assert.Nil(t, doc.FindElement("//ram:SpecifiedTaxRegistration"))
}

func TestCompile_SellerAddress(t *testing.T) {
	doc := compile(t, testInvoice())

	addr := doc.FindElement("//ram:SellerTradeParty/ram:PostalTradeAddress")
	require.NotNil(t, addr)
	assert.Equal(t, "12345", addr.FindElement("ram:PostcodeCode").Text())
	assert.Equal(t, "Main Street 1", addr.FindElement("ram:LineOne").Text())
	assert.Equal(t, "Berlin", addr.FindElement("ram:CityName").Text())
	assert.Equal(t, "DE", addr.FindElement("ram:CountryID").Text())
}

func TestCompile_BuyerCustomerID(t *testing.T) {
	doc := compile(t, testInvoice())

	id := doc.FindElement("//ram:BuyerTradeParty/ram:ID")
	require.NotNil(t, id)
	assert.Equal(t, "CUST-42", id.Text())
	assert.Empty(t, id.Attr)
}

func TestCompile_MissingIBANSuppressesPaymentMeans(t *testing.T) {
	inv := testInvoice()
	inv.Payment = model.PaymentMeans{}

	doc := compile(t, inv)
	assert.Nil(t, doc.FindElement("//ram:SpecifiedTradeSettlementPaymentMeans"))
}

func TestCompile_PaymentMeans(t *testing.T) {
	doc := compile(t, testInvoice())

	means := doc.FindElement("//ram:SpecifiedTradeSettlementPaymentMeans")
	require.NotNil(t, means)
	assert.Equal(t, "58", means.FindElement("ram:TypeCode").Text())
	assert.Equal(t, "DE89370400440532013000",
		means.FindElement("ram:PayeePartyCreditorFinancialAccount/ram:IBANID").Text())
	assert.Equal(t, "COBADEFFXXX",
		means.FindElement("ram:PayeeSpecifiedCreditorFinancialInstitution/ram:BICID").Text())
}

func TestCompile_References(t *testing.T) {
	inv := testInvoice()
	inv.ProjectReference = "PRJ-7"
	inv.OrderReference = "PO-4711"
	inv.Subject = "March consulting"

	doc := compile(t, inv)

	ref := doc.FindElement("//ram:ApplicableHeaderTradeAgreement/ram:AdditionalReferencedDocument")
	require.NotNil(t, ref)
	assert.Equal(t, "PRJ-7", ref.FindElement("ram:IssuerAssignedID").Text())
	assert.Equal(t, "130", ref.FindElement("ram:TypeCode").Text())

	order := doc.FindElement("//ram:ApplicableHeaderTradeAgreement/ram:BuyerOrderReferencedDocument/ram:IssuerAssignedID")
	require.NotNil(t, order)
	assert.Equal(t, "PO-4711", order.Text())

	note := doc.FindElement("//rsm:ExchangedDocument/ram:IncludedNote/ram:Content")
	require.NotNil(t, note)
	assert.Equal(t, "March consulting", note.Text())
}

func TestCompile_LineNumberingIsSequential(t *testing.T) {
	inv := testInvoice()
	inv.Items = append(inv.Items, model.LineItem{
		Description: "Travel",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(50),
		VATPercent:  decimal.NewFromInt(19),
	})

	doc := compile(t, inv)
	ids := doc.FindElements("//ram:IncludedSupplyChainTradeLineItem/ram:AssociatedDocumentLineDocument/ram:LineID")
	require.Len(t, ids, 2)
	assert.Equal(t, "1", ids[0].Text())
	assert.Equal(t, "2", ids[1].Text())
}

func TestCompile_TotalsReconcileAcrossLines(t *testing.T) {
	inv := testInvoice()
	inv.Items = []model.LineItem{
		{Description: "A", Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.RequireFromString("33.33"), VATPercent: decimal.NewFromInt(19)},
		{Description: "B", Quantity: decimal.RequireFromString("2.25"), UnitPrice: decimal.RequireFromString("19.99"), VATPercent: decimal.NewFromInt(19)},
		{Description: "C", Quantity: decimal.NewFromInt(7), UnitPrice: decimal.RequireFromString("0.07"), VATPercent: decimal.NewFromInt(19)},
	}

	doc := compile(t, inv)

	lineTotals := doc.FindElements("//ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount")
	require.Len(t, lineTotals, 3)
	sum := decimal.Zero
	for _, el := range lineTotals {
		sum = sum.Add(decimal.RequireFromString(el.Text()))
	}

	basis := doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation/ram:TaxBasisTotalAmount")
	require.NotNil(t, basis)
	assert.Equal(t, sum.StringFixed(2), basis.Text())

	tax := decimal.RequireFromString(doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation/ram:TaxTotalAmount").Text())
	grand := decimal.RequireFromString(doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation/ram:GrandTotalAmount").Text())
	assert.True(t, sum.Add(tax).Equal(grand), "grand total must equal basis + tax")
}

func TestCompile_Deterministic(t *testing.T) {
	c := compiler.New()
	first, err := c.Compile(testInvoice())
	require.NoError(t, err)
	second, err := c.Compile(testInvoice())
	require.NoError(t, err)

	assert.Equal(t, first.XML, second.XML, "identical input must yield byte-identical XML")
}

func TestCompile_ZeroLineItems(t *testing.T) {
	inv := testInvoice()
	inv.Items = nil

	doc := compile(t, inv)

	assert.Nil(t, doc.FindElement("//ram:IncludedSupplyChainTradeLineItem"))
	sum := doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	require.NotNil(t, sum)
	assert.Equal(t, "0.00", sum.FindElement("ram:LineTotalAmount").Text())
	assert.Equal(t, "0.00", sum.FindElement("ram:TaxBasisTotalAmount").Text())
	assert.Equal(t, "0.00", sum.FindElement("ram:GrandTotalAmount").Text())
}

func TestCompile_MissingNamesDefaultWithWarnings(t *testing.T) {
	inv := testInvoice()
	inv.Seller.Name = ""
	inv.Buyer.Name = ""

	res, err := compiler.New().Compile(inv)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(res.XML))

	assert.Equal(t, "Seller Name", doc.FindElement("//ram:SellerTradeParty/ram:Name").Text())
	assert.Equal(t, "Buyer Name", doc.FindElement("//ram:BuyerTradeParty/ram:Name").Text())
	assert.Len(t, res.Warnings, 2)
}

func TestGenerateXML(t *testing.T) {
	xml, err := compiler.New().GenerateXML(testInvoice())
	require.NoError(t, err)
	assert.Contains(t, xml, "rsm:CrossIndustryInvoice")
}

func TestCompile_NilInvoice(t *testing.T) {
	_, err := compiler.New().Compile(nil)
	require.Error(t, err)
	var serr *model.SerializationError
	assert.ErrorAs(t, err, &serr)
}
