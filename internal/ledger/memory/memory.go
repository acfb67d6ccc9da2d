// Package memory provides an in-memory ledger for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kontor/internal/core"
	ports "kontor/internal/ledger"
)

type Store struct {
	mu              sync.RWMutex
	clients         []core.Client
	invoices        []core.Invoice
	expenses        []core.Expense
	contacts        []core.Contact
	trackedInvoices []core.TrackedInvoice

	// FailWith, when set, is returned by every method. Lets tests exercise
	// upstream failure paths.
	FailWith error
}

var (
	_ ports.ClientLister        = (*Store)(nil)
	_ ports.ClientAppender      = (*Store)(nil)
	_ ports.InvoiceLister       = (*Store)(nil)
	_ ports.InvoiceAppender     = (*Store)(nil)
	_ ports.InvoiceNumberReader = (*Store)(nil)
	_ ports.ExpenseLister       = (*Store)(nil)
	_ ports.ContactStore        = (*Store)(nil)
	_ ports.TrackedInvoiceStore = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Seed replaces the store contents wholesale.
func (s *Store) Seed(clients []core.Client, invoices []core.Invoice, expenses []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append([]core.Client(nil), clients...)
	s.invoices = append([]core.Invoice(nil), invoices...)
	s.expenses = append([]core.Expense(nil), expenses...)
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.Client(nil), s.clients...), nil
}

func (s *Store) AppendClient(_ context.Context, c core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.clients = append(s.clients, c)
	return nil
}

func (s *Store) ListInvoiceNumbers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	numbers := make([]string, 0, len(s.invoices))
	for _, inv := range s.invoices {
		numbers = append(numbers, inv.InvoiceNumber)
	}
	return numbers, nil
}

func (s *Store) ListInvoices(_ context.Context) ([]core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.Invoice(nil), s.invoices...), nil
}

func (s *Store) AppendInvoice(_ context.Context, inv core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.invoices = append(s.invoices, inv)
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) ListContacts(_ context.Context) ([]core.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.Contact(nil), s.contacts...), nil
}

func (s *Store) AppendContact(_ context.Context, c core.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.contacts = append(s.contacts, c)
	return nil
}

func (s *Store) UpdateContact(_ context.Context, c core.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range s.contacts {
		if s.contacts[i].ID == c.ID {
			s.contacts[i] = c
			return nil
		}
	}
	return fmt.Errorf("contact %s: %w", c.ID, core.ErrNotFound)
}

func (s *Store) ListTrackedInvoices(_ context.Context) ([]core.TrackedInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.TrackedInvoice(nil), s.trackedInvoices...), nil
}

func (s *Store) AppendTrackedInvoice(_ context.Context, inv core.TrackedInvoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.trackedInvoices = append(s.trackedInvoices, inv)
	return nil
}

func (s *Store) UpdateTrackedInvoice(_ context.Context, inv core.TrackedInvoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range s.trackedInvoices {
		if s.trackedInvoices[i].ID == inv.ID {
			s.trackedInvoices[i] = inv
			return nil
		}
	}
	return fmt.Errorf("invoice %s: %w", inv.ID, core.ErrNotFound)
}
