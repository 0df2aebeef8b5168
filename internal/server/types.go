package server

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
)

// ItemRequest is one invoice line in the API payload
type ItemRequest struct {
	Name       string   `json:"name"`
	Qty        float64  `json:"qty"`
	Price      float64  `json:"price"`
	VATPercent *float64 `json:"vat_percent,omitempty"`
}

// PartyRequest is a seller or buyer in the API payload
type PartyRequest struct {
	Name         string   `json:"name"`
	AddressLines []string `json:"address_lines"`
	TaxID        string   `json:"tax_id,omitempty"`
	CustomerID   string   `json:"customer_id,omitempty"`
}

// PaymentRequest carries the SEPA details
type PaymentRequest struct {
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`
}

// FooterRequest carries the PDF footer columns
type FooterRequest struct {
	Col1     string `json:"col1,omitempty"`
	Col2     string `json:"col2,omitempty"`
	Col3     string `json:"col3,omitempty"`
	BankName string `json:"bank_name,omitempty"`
}

// InvoiceRequest is the generation payload. Dates are ISO strings
// (YYYY-MM-DD) and parsed during mapping.
type InvoiceRequest struct {
	ID               string          `json:"id"`
	IssueDate        string          `json:"issue_date"`
	DueDate          string          `json:"due_date,omitempty"`
	DeliveryDate     string          `json:"delivery_date,omitempty"`
	Subject          string          `json:"subject,omitempty"`
	ProjectReference string          `json:"project_reference,omitempty"`
	OrderReference   string          `json:"order_reference,omitempty"`
	Currency         string          `json:"currency,omitempty"`
	UnitCode         string          `json:"unit_code,omitempty"`
	Seller           PartyRequest    `json:"seller"`
	Buyer            PartyRequest    `json:"buyer"`
	Payment          *PaymentRequest `json:"payment,omitempty"`
	Footer           *FooterRequest  `json:"footer,omitempty"`
	Items            []ItemRequest   `json:"items"`
}

const dateLayout = "2006-01-02"

// Invoice maps the request onto the normalized model, validating the fields
// the API contract makes mandatory.
func (r *InvoiceRequest) Invoice() (*model.Invoice, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, model.NewValidationError("id", r.ID, "invoice id is required")
	}
	if r.IssueDate == "" {
		return nil, model.NewValidationError("issue_date", r.IssueDate, "issue date is required")
	}
	issue, err := time.Parse(dateLayout, r.IssueDate)
	if err != nil {
		return nil, model.NewValidationError("issue_date", r.IssueDate, "expected YYYY-MM-DD")
	}
	if len(r.Items) == 0 {
		return nil, model.NewValidationError("items", "", "invoice must contain at least one item")
	}

	inv := &model.Invoice{
		ID:               r.ID,
		IssueDate:        issue,
		Subject:          r.Subject,
		ProjectReference: r.ProjectReference,
		OrderReference:   r.OrderReference,
		Currency:         r.Currency,
		UnitCode:         r.UnitCode,
		Seller: model.Party{
			Name:         r.Seller.Name,
			AddressLines: r.Seller.AddressLines,
			TaxID:        r.Seller.TaxID,
		},
		Buyer: model.Party{
			Name:         r.Buyer.Name,
			AddressLines: r.Buyer.AddressLines,
			CustomerID:   r.Buyer.CustomerID,
		},
	}

	if r.DueDate != "" {
		due, err := time.Parse(dateLayout, r.DueDate)
		if err != nil {
			return nil, model.NewValidationError("due_date", r.DueDate, "expected YYYY-MM-DD")
		}
		inv.DueDate = &due
	}
	if r.DeliveryDate != "" {
		delivered, err := time.Parse(dateLayout, r.DeliveryDate)
		if err != nil {
			return nil, model.NewValidationError("delivery_date", r.DeliveryDate, "expected YYYY-MM-DD")
		}
		inv.DeliveryDate = &delivered
	}
	if r.Payment != nil {
		inv.Payment = model.PaymentMeans{IBAN: r.Payment.IBAN, BIC: r.Payment.BIC}
	}
	if r.Footer != nil {
		inv.Footer = model.FooterBlock{
			Col1:     r.Footer.Col1,
			Col2:     r.Footer.Col2,
			Col3:     r.Footer.Col3,
			BankName: r.Footer.BankName,
		}
	}

	inv.Items = make([]model.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		vat := model.DefaultVATPercent
		if item.VATPercent != nil {
			vat = *item.VATPercent
		}
		inv.Items = append(inv.Items, model.LineItem{
			Description: item.Name,
			Quantity:    decimal.NewFromFloat(item.Qty),
			UnitPrice:   decimal.NewFromFloat(item.Price),
			VATPercent:  decimal.NewFromFloat(vat),
		})
	}

	return inv, nil
}

// NextIDResponse carries the next free invoice number
type NextIDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
