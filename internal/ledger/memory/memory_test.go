package memory

import (
	"context"
	"errors"
	"testing"

	"kontor/internal/core"

	"github.com/shopspring/decimal"
)

func TestAppendAndListInvoices(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := core.Invoice{
		PaymentDate:   "15.01.2025",
		Amount:        decimal.RequireFromString("100"),
		ClientName:    "Testkunde",
		InvoiceNumber: "001",
	}
	if err := s.AppendInvoice(ctx, inv); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].InvoiceNumber != "001" {
		t.Fatalf("unexpected invoices: %+v", got)
	}

	numbers, err := s.ListInvoiceNumbers(ctx)
	if err != nil {
		t.Fatalf("list numbers: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != "001" {
		t.Fatalf("unexpected numbers: %v", numbers)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed([]core.Client{{Name: "A", ClientNumber: "0001"}}, nil, nil)

	got, _ := s.ListClients(ctx)
	got[0].Name = "mutated"

	again, _ := s.ListClients(ctx)
	if again[0].Name != "A" {
		t.Fatal("ListClients leaked internal slice")
	}
}

func TestUpdateContact(t *testing.T) {
	s := New()
	ctx := context.Background()

	c := core.Contact{ID: "c1", Name: "Alt", Business: core.BusinessTutoring}
	if err := s.AppendContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.Name = "Neu"
	if err := s.UpdateContact(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.ListContacts(ctx)
	if got[0].Name != "Neu" {
		t.Fatalf("update not applied: %+v", got[0])
	}

	err := s.UpdateContact(ctx, core.Contact{ID: "missing"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTrackedInvoiceStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := core.TrackedInvoice{ID: "i1", InvoiceNumber: "042", Status: core.StatusDraft}
	if err := s.AppendTrackedInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}
	inv.Status = core.StatusPaid
	if err := s.UpdateTrackedInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListTrackedInvoices(ctx)
	if got[0].Status != core.StatusPaid {
		t.Fatalf("status = %s", got[0].Status)
	}
}

func TestFailWith(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.FailWith = boom

	if _, err := s.ListClients(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := s.AppendInvoice(context.Background(), core.Invoice{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}
