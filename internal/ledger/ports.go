package ledger

import (
	"context"

	"kontor/internal/core"
)

// Ports for outbound adapters. The Sheets client and the in-memory store
// both satisfy all of them; consumers depend on the narrowest slice.
type (
	ClientLister interface {
		ListClients(ctx context.Context) ([]core.Client, error)
	}

	ClientAppender interface {
		AppendClient(ctx context.Context, c core.Client) error
	}

	// InvoiceNumberReader exposes the raw Rechnungsnummer column so the
	// allocator sees every cell, including ones that no longer parse as a
	// full invoice row.
	InvoiceNumberReader interface {
		ListInvoiceNumbers(ctx context.Context) ([]string, error)
	}

	InvoiceLister interface {
		ListInvoices(ctx context.Context) ([]core.Invoice, error)
	}

	InvoiceAppender interface {
		AppendInvoice(ctx context.Context, inv core.Invoice) error
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	ContactStore interface {
		ListContacts(ctx context.Context) ([]core.Contact, error)
		AppendContact(ctx context.Context, c core.Contact) error
		UpdateContact(ctx context.Context, c core.Contact) error
	}

	TrackedInvoiceStore interface {
		ListTrackedInvoices(ctx context.Context) ([]core.TrackedInvoice, error)
		AppendTrackedInvoice(ctx context.Context, inv core.TrackedInvoice) error
		UpdateTrackedInvoice(ctx context.Context, inv core.TrackedInvoice) error
	}

	// Store is the full ledger surface, for wiring backends that implement
	// everything.
	Store interface {
		ClientLister
		ClientAppender
		InvoiceNumberReader
		InvoiceLister
		InvoiceAppender
		ExpenseLister
		ContactStore
		TrackedInvoiceStore
	}
)
