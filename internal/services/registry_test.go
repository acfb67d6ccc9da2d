package services

import (
	"context"
	"errors"
	"testing"

	"kontor/internal/core"
	ledgermem "kontor/internal/ledger/memory"

	"github.com/shopspring/decimal"
)

func newTestRegistry() (*Registry, *ledgermem.Store) {
	store := ledgermem.New()
	return NewRegistry(store, store, TaxRate{Rate: decimal.RequireFromString("19")}), store
}

func TestCreateContactAssignsIDAndTimestamp(t *testing.T) {
	r, _ := newTestRegistry()

	got, err := r.CreateContact(context.Background(), core.Contact{
		Name:     "Lernstudio Nord",
		Business: core.BusinessTutoring,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.CreatedAt == "" {
		t.Fatalf("missing id or createdAt: %+v", got)
	}
}

func TestCreateContactRejectsInvalid(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	if _, err := r.CreateContact(ctx, core.Contact{Business: core.BusinessTutoring}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := r.CreateContact(ctx, core.Contact{Name: "X", Business: "retail"}); !errors.Is(err, core.ErrInvalidBusiness) {
		t.Errorf("expected ErrInvalidBusiness, got %v", err)
	}
}

func TestUpdateContactPartial(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	created, err := r.CreateContact(ctx, core.Contact{
		Name:     "Lernstudio Nord",
		Email:    "alt@example.de",
		Business: core.BusinessTutoring,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := r.UpdateContact(ctx, created.ID, core.Contact{Email: "neu@example.de"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Email != "neu@example.de" {
		t.Errorf("email = %q", updated.Email)
	}
	if updated.Name != "Lernstudio Nord" {
		t.Errorf("name changed unexpectedly: %q", updated.Name)
	}

	if _, err := r.UpdateContact(ctx, "missing", core.Contact{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTrackedInvoiceComputesTotals(t *testing.T) {
	r, _ := newTestRegistry()

	inv, err := r.CreateTrackedInvoice(context.Background(), core.TrackedInvoice{
		InvoiceNumber: "043",
		ClientName:    "Lernstudio Nord",
		Business:      core.BusinessTutoring,
		Items: []core.LineItem{
			{Description: "Nachhilfe Mathe", Quantity: 4, UnitPrice: decimal.RequireFromString("35")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !inv.Subtotal.Equal(decimal.RequireFromString("140")) {
		t.Errorf("subtotal = %s, want 140", inv.Subtotal)
	}
	if !inv.Tax.Equal(decimal.RequireFromString("26.6")) {
		t.Errorf("tax = %s, want 26.6", inv.Tax)
	}
	if !inv.Total.Equal(decimal.RequireFromString("166.6")) {
		t.Errorf("total = %s, want 166.6", inv.Total)
	}
	if inv.Status != core.StatusDraft {
		t.Errorf("status = %s, want draft", inv.Status)
	}
	if inv.Items[0].Position != 1 {
		t.Errorf("items not positioned: %+v", inv.Items)
	}
}

func TestCreateTrackedInvoiceKleinunternehmer(t *testing.T) {
	store := ledgermem.New()
	r := NewRegistry(store, store, TaxRate{Rate: decimal.RequireFromString("19"), Kleinunternehmer: true})

	inv, err := r.CreateTrackedInvoice(context.Background(), core.TrackedInvoice{
		ClientName: "X",
		Business:   core.BusinessConsultancy,
		Items:      []core.LineItem{{Description: "Beratung", Quantity: 1, UnitPrice: decimal.RequireFromString("100")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Tax.IsZero() {
		t.Errorf("tax = %s, want 0", inv.Tax)
	}
	if !inv.Total.Equal(inv.Subtotal) {
		t.Errorf("total %s != subtotal %s", inv.Total, inv.Subtotal)
	}
}

func TestSetInvoiceStatus(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	inv, err := r.CreateTrackedInvoice(ctx, core.TrackedInvoice{
		ClientName: "X",
		Business:   core.BusinessConsultancy,
		Items:      []core.LineItem{{Description: "Beratung", Quantity: 1, UnitPrice: decimal.RequireFromString("100")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := r.SetInvoiceStatus(ctx, inv.ID, core.StatusPaid)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != core.StatusPaid {
		t.Errorf("status = %s", updated.Status)
	}

	if _, err := r.SetInvoiceStatus(ctx, inv.ID, "cancelled"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := r.SetInvoiceStatus(ctx, "missing", core.StatusSent); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
