package services

import (
	"context"
	"errors"
	"testing"

	"kontor/internal/core"
	ledgermem "kontor/internal/ledger/memory"
)

func TestNextInvoiceNumber(t *testing.T) {
	store := ledgermem.New()
	store.Seed(nil, []core.Invoice{
		{InvoiceNumber: "001"},
		{InvoiceNumber: "RE-2025-041"},
		{InvoiceNumber: "017"},
	}, nil)

	a := NewNumberAllocator(store, store)
	got, err := a.NextInvoiceNumber(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// "RE-2025-041" carries 2025 as its first digit run, which beats the
	// plain sequential numbers.
	if got != "2026" {
		t.Fatalf("next invoice number = %q, want 2026", got)
	}
}

func TestNextClientNumber(t *testing.T) {
	store := ledgermem.New()
	store.Seed([]core.Client{
		{Name: "A", ClientNumber: "0003"},
		{Name: "B", ClientNumber: "0011"},
	}, nil, nil)

	a := NewNumberAllocator(store, store)
	got, err := a.NextClientNumber(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "0012" {
		t.Fatalf("next client number = %q, want 0012", got)
	}
}

func TestAllocatorPropagatesReadErrors(t *testing.T) {
	store := ledgermem.New()
	store.FailWith = errors.New("sheets unavailable")

	a := NewNumberAllocator(store, store)
	if _, err := a.NextInvoiceNumber(context.Background()); err == nil {
		t.Fatal("expected error, a guessed number could collide")
	}
	if _, err := a.NextClientNumber(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
