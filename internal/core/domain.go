package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentBankTransfer PaymentMethod = "Überweisung"
	PaymentCash         PaymentMethod = "Bar"
	PaymentPayPal       PaymentMethod = "PayPal"
)

const (
	BusinessConsultancy BusinessLine = "consultancy"
	BusinessTutoring    BusinessLine = "tutoring"
)

const (
	StatusDraft   InvoiceStatus = "draft"
	StatusSent    InvoiceStatus = "sent"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

type (
	PaymentMethod string
	BusinessLine  string
	InvoiceStatus string

	// Client is a row in the Kunden tab. Identity key is the zero-padded
	// four digit Kundennummer.
	Client struct {
		Name         string `json:"name"`
		ClientNumber string `json:"clientNumber"`
		Street       string `json:"street"`
		City         string `json:"city"`
	}

	// LineItem is one position on an invoice. Total is always
	// Quantity × UnitPrice; AssignPositions recomputes it.
	LineItem struct {
		Position    int             `json:"position"`
		Description string          `json:"description"`
		Quantity    int             `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unitPrice"`
		Total       decimal.Decimal `json:"total"`
	}

	// Invoice is one row of the Einnahmen_Gewerbe ledger. The Amount column
	// holds the pre-tax subtotal, not the grand total printed on the PDF.
	Invoice struct {
		PaymentDate   string          `json:"paymentDate"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description"`
		ClientName    string          `json:"clientName"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		InvoiceNumber string          `json:"invoiceNumber"`
		DocumentLink  string          `json:"documentLink"`
	}

	// Expense is one row of the Ausgaben_Gewerbe ledger. Read-only; there is
	// no creation path in this system.
	Expense struct {
		PaymentDate   string          `json:"paymentDate"`
		Amount        decimal.Decimal `json:"amount"`
		Purpose       string          `json:"purpose"`
		Vendor        string          `json:"vendor"`
		PaymentMethod string          `json:"paymentMethod"`
		Reference     string          `json:"reference"`
		DocumentLink  string          `json:"documentLink"`
	}

	// InvoiceDocument carries everything the PDF renderer needs.
	InvoiceDocument struct {
		InvoiceNumber string
		IssueDate     time.Time
		PeriodStart   time.Time
		PeriodEnd     time.Time
		Client        Client
		Items         []LineItem
		PaymentMethod PaymentMethod
	}

	// Contact is a row in the Clients tab, the cross-business client registry.
	Contact struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Email     string       `json:"email"`
		Phone     string       `json:"phone"`
		Company   string       `json:"company"`
		Business  BusinessLine `json:"business"`
		Notes     string       `json:"notes"`
		CreatedAt string       `json:"createdAt"`
	}

	// TrackedInvoice is a row in the Invoices tab. Unlike the Gewerbe ledger
	// it supports status transitions after creation.
	TrackedInvoice struct {
		ID            string          `json:"id"`
		InvoiceNumber string          `json:"invoiceNumber"`
		ClientID      string          `json:"clientId"`
		ClientName    string          `json:"clientName"`
		Business      BusinessLine    `json:"business"`
		IssueDate     string          `json:"issueDate"`
		DueDate       string          `json:"dueDate"`
		Items         []LineItem      `json:"items"`
		Subtotal      decimal.Decimal `json:"subtotal"`
		Tax           decimal.Decimal `json:"tax"`
		Total         decimal.Decimal `json:"total"`
		Status        InvoiceStatus   `json:"status"`
		PDFURL        string          `json:"pdfUrl,omitempty"`
		CreatedAt     string          `json:"createdAt"`
	}
)

var (
	ErrEmptyClientName     = errors.New("empty client name")
	ErrMissingClientNumber = errors.New("client number is required")
	ErrEmptyLineItems      = errors.New("invoice needs at least one line item")
	ErrEmptyDescription    = errors.New("empty line item description")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrNegativeUnitPrice   = errors.New("unit price cannot be negative")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidBusiness     = errors.New("invalid business line")
	ErrInvalidStatus       = errors.New("invalid invoice status")
)

func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentBankTransfer, PaymentCash, PaymentPayPal:
		return nil
	}
	return ErrInvalidPayment
}

func (b BusinessLine) Validate() error {
	switch b {
	case BusinessConsultancy, BusinessTutoring:
		return nil
	}
	return ErrInvalidBusiness
}

func (s InvoiceStatus) Validate() error {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return nil
	}
	return ErrInvalidStatus
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyClientName
	}
	return nil
}

func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Description) == "" {
		return ErrEmptyDescription
	}
	if li.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if li.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	return nil
}

// AssignPositions numbers the items 1-based in input order and recomputes
// each Total as Quantity × UnitPrice.
func AssignPositions(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		li.Position = i + 1
		li.Total = decimal.NewFromInt(int64(li.Quantity)).Mul(li.UnitPrice)
		out[i] = li
	}
	return out
}

// Subtotal sums the line totals.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Total)
	}
	return sum
}

// ServiceDescription joins all line item descriptions for the ledger row.
func ServiceDescription(items []LineItem) string {
	parts := make([]string, 0, len(items))
	for _, li := range items {
		parts = append(parts, li.Description)
	}
	return strings.Join(parts, "; ")
}

func (d InvoiceDocument) Validate() error {
	if err := d.Client.Validate(); err != nil {
		return err
	}
	if len(d.Items) == 0 {
		return ErrEmptyLineItems
	}
	for _, li := range d.Items {
		if err := li.Validate(); err != nil {
			return err
		}
	}
	if err := d.PaymentMethod.Validate(); err != nil {
		return err
	}
	if d.IssueDate.IsZero() || d.PeriodStart.IsZero() || d.PeriodEnd.IsZero() {
		return errors.New("issue date and service period are required")
	}
	if d.PeriodEnd.Before(d.PeriodStart) {
		return errors.New("service period end before start")
	}
	return nil
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyClientName
	}
	return c.Business.Validate()
}
