package services

import (
	"context"
	"fmt"

	"kontor/internal/core"
	"kontor/internal/ledger"
)

// NumberAllocator derives the next free invoice and client numbers from the
// ledger. It never fabricates a number when the ledger cannot be read; a
// guessed number risks a duplicate on the next successful write.
type NumberAllocator struct {
	invoiceNumbers ledger.InvoiceNumberReader
	clients        ledger.ClientLister
}

func NewNumberAllocator(invoiceNumbers ledger.InvoiceNumberReader, clients ledger.ClientLister) *NumberAllocator {
	return &NumberAllocator{invoiceNumbers: invoiceNumbers, clients: clients}
}

func (a *NumberAllocator) NextInvoiceNumber(ctx context.Context) (string, error) {
	numbers, err := a.invoiceNumbers.ListInvoiceNumbers(ctx)
	if err != nil {
		return "", fmt.Errorf("list invoice numbers: %w", err)
	}
	return core.NextInvoiceNumber(numbers), nil
}

func (a *NumberAllocator) NextClientNumber(ctx context.Context) (string, error) {
	clients, err := a.clients.ListClients(ctx)
	if err != nil {
		return "", fmt.Errorf("list clients: %w", err)
	}
	numbers := make([]string, 0, len(clients))
	for _, c := range clients {
		numbers = append(numbers, c.ClientNumber)
	}
	return core.NextClientNumber(numbers), nil
}
