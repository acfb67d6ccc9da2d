package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kontor/internal/core"
	"kontor/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Registry manages the cross-business contact list and the tracked invoices
// that carry a lifecycle status, as opposed to the Gewerbe ledger which is
// append-only.
type Registry struct {
	contacts ledger.ContactStore
	invoices ledger.TrackedInvoiceStore
	tax      TaxRate
	now      func() time.Time
}

// TaxRate mirrors the PDF tax settings for tracked invoice totals.
type TaxRate struct {
	Rate             decimal.Decimal
	Kleinunternehmer bool
}

func (t TaxRate) amount(subtotal decimal.Decimal) decimal.Decimal {
	if t.Kleinunternehmer {
		return decimal.Zero
	}
	return subtotal.Mul(t.Rate).Div(decimal.NewFromInt(100))
}

func NewRegistry(contacts ledger.ContactStore, invoices ledger.TrackedInvoiceStore, tax TaxRate) *Registry {
	return &Registry{contacts: contacts, invoices: invoices, tax: tax, now: time.Now}
}

func (r *Registry) ListContacts(ctx context.Context) ([]core.Contact, error) {
	return r.contacts.ListContacts(ctx)
}

func (r *Registry) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Contact{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.now().UTC().Format(time.RFC3339)
	if err := r.contacts.AppendContact(ctx, c); err != nil {
		return core.Contact{}, fmt.Errorf("append contact: %w", err)
	}
	slog.InfoContext(ctx, "Contact created", "contact_id", c.ID, "business", string(c.Business))
	return c, nil
}

// UpdateContact applies a partial update; empty fields keep their value,
// business and name are validated when supplied.
func (r *Registry) UpdateContact(ctx context.Context, id string, patch core.Contact) (core.Contact, error) {
	existing, err := r.findContact(ctx, id)
	if err != nil {
		return core.Contact{}, err
	}
	if patch.Name != "" {
		existing.Name = strings.TrimSpace(patch.Name)
	}
	if patch.Email != "" {
		existing.Email = patch.Email
	}
	if patch.Phone != "" {
		existing.Phone = patch.Phone
	}
	if patch.Company != "" {
		existing.Company = patch.Company
	}
	if patch.Business != "" {
		existing.Business = patch.Business
	}
	if patch.Notes != "" {
		existing.Notes = patch.Notes
	}
	if err := existing.Validate(); err != nil {
		return core.Contact{}, err
	}
	if err := r.contacts.UpdateContact(ctx, existing); err != nil {
		return core.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return existing, nil
}

func (r *Registry) findContact(ctx context.Context, id string) (core.Contact, error) {
	contacts, err := r.contacts.ListContacts(ctx)
	if err != nil {
		return core.Contact{}, fmt.Errorf("list contacts: %w", err)
	}
	for _, c := range contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Contact{}, fmt.Errorf("contact %s: %w", id, core.ErrNotFound)
}

func (r *Registry) ListTrackedInvoices(ctx context.Context) ([]core.TrackedInvoice, error) {
	return r.invoices.ListTrackedInvoices(ctx)
}

// CreateTrackedInvoice numbers the items, computes the totals from the tax
// settings, and stores the invoice as a draft unless a valid status is given.
func (r *Registry) CreateTrackedInvoice(ctx context.Context, inv core.TrackedInvoice) (core.TrackedInvoice, error) {
	if strings.TrimSpace(inv.ClientName) == "" {
		return core.TrackedInvoice{}, core.ErrEmptyClientName
	}
	if len(inv.Items) == 0 {
		return core.TrackedInvoice{}, core.ErrEmptyLineItems
	}
	for _, item := range inv.Items {
		if err := item.Validate(); err != nil {
			return core.TrackedInvoice{}, err
		}
	}
	if err := inv.Business.Validate(); err != nil {
		return core.TrackedInvoice{}, err
	}
	if inv.Status == "" {
		inv.Status = core.StatusDraft
	}
	if err := inv.Status.Validate(); err != nil {
		return core.TrackedInvoice{}, err
	}

	inv.Items = core.AssignPositions(inv.Items)
	inv.Subtotal = core.Subtotal(inv.Items)
	inv.Tax = r.tax.amount(inv.Subtotal)
	inv.Total = inv.Subtotal.Add(inv.Tax)
	inv.ID = uuid.NewString()
	inv.CreatedAt = r.now().UTC().Format(time.RFC3339)

	if err := r.invoices.AppendTrackedInvoice(ctx, inv); err != nil {
		return core.TrackedInvoice{}, fmt.Errorf("append invoice: %w", err)
	}
	slog.InfoContext(ctx, "Tracked invoice created",
		"invoice_id", inv.ID, "number", inv.InvoiceNumber, "total", inv.Total.String())
	return inv, nil
}

// SetInvoiceStatus moves a tracked invoice through its lifecycle.
func (r *Registry) SetInvoiceStatus(ctx context.Context, id string, status core.InvoiceStatus) (core.TrackedInvoice, error) {
	if err := status.Validate(); err != nil {
		return core.TrackedInvoice{}, err
	}
	invoices, err := r.invoices.ListTrackedInvoices(ctx)
	if err != nil {
		return core.TrackedInvoice{}, fmt.Errorf("list invoices: %w", err)
	}
	for _, inv := range invoices {
		if inv.ID != id {
			continue
		}
		inv.Status = status
		if err := r.invoices.UpdateTrackedInvoice(ctx, inv); err != nil {
			return core.TrackedInvoice{}, fmt.Errorf("update invoice: %w", err)
		}
		slog.InfoContext(ctx, "Invoice status changed", "invoice_id", id, "status", string(status))
		return inv, nil
	}
	return core.TrackedInvoice{}, fmt.Errorf("invoice %s: %w", id, core.ErrNotFound)
}
