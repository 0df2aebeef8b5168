package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile selects the Factur-X conformance level the compiler targets.
type Profile string

const (
	ProfileEN16931 Profile = "en16931"
	ProfileBasic   Profile = "basic"
)

// Default values substituted by the compiler when input is incomplete.
// The generator never refuses to produce a document over missing cosmetic
// fields; it patches them and reports a warning instead.
const (
	DefaultSellerName  = "Seller Name"
	DefaultBuyerName   = "Buyer Name"
	DefaultItemName    = "Item"
	DefaultCurrency    = "EUR"
	DefaultUnitCode    = "C62"
	DefaultCountryID   = "DE"
	DefaultDueDays     = 14
	DefaultVATPercent  = 19.0
)

// Party is a seller or buyer. Seller and Buyer are structurally identical
// but play distinct roles; the compiler never shares state between them.
type Party struct {
	Name         string   `json:"name"`
	AddressLines []string `json:"address_lines"`
	TaxID        string   `json:"tax_id,omitempty"`
	CustomerID   string   `json:"customer_id,omitempty"`
}

// LineItem is one invoiced position. Net and tax amounts are never stored
// on the item: the compiler derives them from quantity, unit price and rate
// at compile time so that line and document totals always reconcile.
type LineItem struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	VATPercent     decimal.Decimal `json:"vat_percent"`
	GlobalID       string          `json:"global_id,omitempty"`
	GlobalIDScheme string          `json:"global_id_scheme,omitempty"`
}

// PaymentMeans carries the SEPA account of the seller. Presence is
// all-or-nothing: an empty IBAN means no payment-means block is emitted.
type PaymentMeans struct {
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`
}

// FooterBlock holds the three free-text footer columns and the bank name
// shown on the visual PDF. It is passed through untouched and never appears
// in the XML.
type FooterBlock struct {
	Col1     string `json:"col1,omitempty"`
	Col2     string `json:"col2,omitempty"`
	Col3     string `json:"col3,omitempty"`
	BankName string `json:"bank_name,omitempty"`
}

// DatePeriod is a delivery/service date range. When a period is given the
// XML occurrence date uses its start.
type DatePeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Invoice is the canonical normalized invoice record consumed by the
// compiler. All list fields are ordered sequences (empty, never nil-means-
// something); all dates are pre-parsed. The ID is pre-assigned by the
// caller; the core never touches counters or history files.
type Invoice struct {
	ID               string       `json:"id"`
	IssueDate        time.Time    `json:"issue_date"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	DeliveryDate     *time.Time   `json:"delivery_date,omitempty"`
	DeliveryPeriod   *DatePeriod  `json:"delivery_period,omitempty"`
	ProjectReference string       `json:"project_reference,omitempty"`
	OrderReference   string       `json:"order_reference,omitempty"`
	Subject          string       `json:"subject,omitempty"`
	Currency         string       `json:"currency"`
	UnitCode         string       `json:"unit_code"`
	Seller           Party        `json:"seller"`
	Buyer            Party        `json:"buyer"`
	Payment          PaymentMeans `json:"payment"`
	Footer           FooterBlock  `json:"footer"`
	Items            []LineItem   `json:"items"`
}

// CurrencyOrDefault returns the invoice currency, defaulting to EUR.
func (inv *Invoice) CurrencyOrDefault() string {
	if inv.Currency == "" {
		return DefaultCurrency
	}
	return inv.Currency
}

// UnitCodeOrDefault returns the UN/CEFACT unit code for billed quantities,
// defaulting to C62 (piece).
func (inv *Invoice) UnitCodeOrDefault() string {
	if inv.UnitCode == "" {
		return DefaultUnitCode
	}
	return inv.UnitCode
}

// EffectiveDueDate returns the due date, defaulting to issue date plus
// DefaultDueDays when none was supplied.
func (inv *Invoice) EffectiveDueDate() time.Time {
	if inv.DueDate != nil {
		return *inv.DueDate
	}
	return inv.IssueDate.AddDate(0, 0, DefaultDueDays)
}

// OccurrenceDate returns the delivery/service date to emit, preferring the
// single date, then the start of a delivery period. The boolean reports
// whether any delivery date exists.
func (inv *Invoice) OccurrenceDate() (time.Time, bool) {
	if inv.DeliveryDate != nil {
		return *inv.DeliveryDate, true
	}
	if inv.DeliveryPeriod != nil {
		return inv.DeliveryPeriod.Start, true
	}
	return time.Time{}, false
}
