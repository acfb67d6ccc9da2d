package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kontor/internal/core"
	filesmem "kontor/internal/files/memory"
	ledgermem "kontor/internal/ledger/memory"
	"kontor/internal/pdf"

	"github.com/shopspring/decimal"
)

func testRenderer() *pdf.Renderer {
	return &pdf.Renderer{
		Sender: pdf.Sender{Name: "Erika Beispiel", Street: "Musterweg 2", City: "20095 Hamburg"},
		Tax:    pdf.TaxConfig{Rate: decimal.RequireFromString("19")},
	}
}

// composeReq issues against a fresh client; tests addressing an existing
// client override ClientNumber and clear NewClient.
func composeReq() ComposeRequest {
	return ComposeRequest{
		NewClient:     true,
		ClientName:    "Max Möller GmbH",
		Street:        "Hauptstraße 1",
		City:          "10115 Berlin",
		Items:         []core.LineItem{{Description: "Beratung", Quantity: 2, UnitPrice: decimal.RequireFromString("50")}},
		IssueDate:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		PeriodStart:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		PaymentMethod: core.PaymentBankTransfer,
	}
}

func TestComposeFullFlow(t *testing.T) {
	store := ledgermem.New()
	store.Seed(nil, []core.Invoice{{InvoiceNumber: "006"}}, nil)
	docs := filesmem.New()
	c := NewInvoiceComposer(store, testRenderer(), docs, "invoices-folder", 0)

	res, err := c.Compose(context.Background(), composeReq())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if res.InvoiceNumber != "007" {
		t.Errorf("invoice number = %q, want 007", res.InvoiceNumber)
	}
	if res.FileName != "Rechnung_007_Max_Möller_GmbH.pdf" {
		t.Errorf("file name = %q", res.FileName)
	}
	if res.ClientNumber != "0001" {
		t.Errorf("client number = %q, want 0001", res.ClientNumber)
	}

	// ledger row carries the pre-tax subtotal, not the grand total
	invoices, _ := store.ListInvoices(context.Background())
	last := invoices[len(invoices)-1]
	if !last.Amount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("ledger amount = %s, want 100", last.Amount)
	}
	if last.PaymentDate != "15.02.2025" {
		t.Errorf("payment date = %q", last.PaymentDate)
	}
	if last.DocumentLink == "" {
		t.Error("ledger row missing document link")
	}

	// new client was registered
	clients, _ := store.ListClients(context.Background())
	if len(clients) != 1 || clients[0].ClientNumber != "0001" {
		t.Fatalf("client not registered: %+v", clients)
	}

	// PDF landed in the folder
	stored, _ := docs.ListFolder(context.Background(), "invoices-folder")
	if len(stored) != 1 || stored[0].Name != res.FileName {
		t.Fatalf("pdf not stored: %+v", stored)
	}
}

func TestComposeResolvesClientByNumber(t *testing.T) {
	store := ledgermem.New()
	store.Seed([]core.Client{{Name: "Max Möller GmbH", ClientNumber: "0042"}}, nil, nil)
	c := NewInvoiceComposer(store, testRenderer(), filesmem.New(), "f", 0)

	req := composeReq()
	req.NewClient = false
	req.ClientName = ""
	req.ClientNumber = "0042"

	res, err := c.Compose(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.ClientNumber != "0042" {
		t.Errorf("client number = %q, want existing 0042", res.ClientNumber)
	}
	clients, _ := store.ListClients(context.Background())
	if len(clients) != 1 {
		t.Fatalf("duplicate client registered: %+v", clients)
	}
}

func TestComposeUnknownClientNumberFails(t *testing.T) {
	store := ledgermem.New()
	store.Seed([]core.Client{{Name: "Max Möller GmbH", ClientNumber: "0042"}}, nil, nil)
	c := NewInvoiceComposer(store, testRenderer(), filesmem.New(), "f", 0)

	req := composeReq()
	req.NewClient = false
	req.ClientNumber = "0024"

	if _, err := c.Compose(context.Background(), req); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown Kundennummer, got %v", err)
	}

	// a mistyped number must not mint a new client or a ledger row
	clients, _ := store.ListClients(context.Background())
	if len(clients) != 1 {
		t.Fatalf("client registered on failed lookup: %+v", clients)
	}
	invoices, _ := store.ListInvoices(context.Background())
	if len(invoices) != 0 {
		t.Fatalf("ledger row written on failed lookup: %+v", invoices)
	}
}

func TestComposeValidation(t *testing.T) {
	c := NewInvoiceComposer(ledgermem.New(), testRenderer(), filesmem.New(), "f", 0)

	noName := composeReq()
	noName.ClientName = "  "
	if _, err := c.Compose(context.Background(), noName); !errors.Is(err, core.ErrEmptyClientName) {
		t.Errorf("expected ErrEmptyClientName, got %v", err)
	}

	noNumber := composeReq()
	noNumber.NewClient = false
	noNumber.ClientNumber = " "
	if _, err := c.Compose(context.Background(), noNumber); !errors.Is(err, core.ErrMissingClientNumber) {
		t.Errorf("expected ErrMissingClientNumber, got %v", err)
	}

	noItems := composeReq()
	noItems.Items = nil
	if _, err := c.Compose(context.Background(), noItems); !errors.Is(err, core.ErrEmptyLineItems) {
		t.Errorf("expected ErrEmptyLineItems, got %v", err)
	}
}

func TestComposeUploadFailureLeavesLedgerUntouched(t *testing.T) {
	store := ledgermem.New()
	docs := filesmem.New()
	docs.FailWith = errors.New("drive down")
	c := NewInvoiceComposer(store, testRenderer(), docs, "f", 0)

	if _, err := c.Compose(context.Background(), composeReq()); err == nil {
		t.Fatal("expected upload error")
	}
	invoices, _ := store.ListInvoices(context.Background())
	if len(invoices) != 0 {
		t.Fatalf("ledger row written despite failed upload: %+v", invoices)
	}
}

func TestComposeSerializesNumberAllocation(t *testing.T) {
	store := ledgermem.New()
	store.Seed([]core.Client{{Name: "Max Möller GmbH", ClientNumber: "0001"}}, nil, nil)
	c := NewInvoiceComposer(store, testRenderer(), filesmem.New(), "f", 0)

	var wg sync.WaitGroup
	results := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := composeReq()
			req.NewClient = false
			req.ClientNumber = "0001"
			res, err := c.Compose(context.Background(), req)
			if err != nil {
				t.Errorf("compose: %v", err)
				return
			}
			results <- res.InvoiceNumber
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for n := range results {
		if seen[n] {
			t.Fatalf("invoice number %q allocated twice", n)
		}
		seen[n] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 distinct numbers, got %d", len(seen))
	}
}

// deadlineLedger records the deadline each ledger call runs under and stalls
// the first read so later calls would overrun a shared budget.
type deadlineLedger struct {
	*ledgermem.Store
	mu        sync.Mutex
	deadlines []time.Time
}

func (l *deadlineLedger) record(ctx context.Context) {
	d, ok := ctx.Deadline()
	if !ok {
		return
	}
	l.mu.Lock()
	l.deadlines = append(l.deadlines, d)
	l.mu.Unlock()
}

func (l *deadlineLedger) ListClients(ctx context.Context) ([]core.Client, error) {
	l.record(ctx)
	time.Sleep(20 * time.Millisecond)
	return l.Store.ListClients(ctx)
}

func (l *deadlineLedger) ListInvoiceNumbers(ctx context.Context) ([]string, error) {
	l.record(ctx)
	return l.Store.ListInvoiceNumbers(ctx)
}

func (l *deadlineLedger) AppendInvoice(ctx context.Context, inv core.Invoice) error {
	l.record(ctx)
	return l.Store.AppendInvoice(ctx, inv)
}

func TestComposeBudgetsEachUpstreamCall(t *testing.T) {
	store := ledgermem.New()
	store.Seed([]core.Client{{Name: "Max Möller GmbH", ClientNumber: "0001"}}, nil, nil)
	ledger := &deadlineLedger{Store: store}
	c := NewInvoiceComposer(ledger, testRenderer(), filesmem.New(), "f", time.Second)

	req := composeReq()
	req.NewClient = false
	req.ClientNumber = "0001"
	if _, err := c.Compose(context.Background(), req); err != nil {
		t.Fatalf("compose: %v", err)
	}

	if len(ledger.deadlines) != 3 {
		t.Fatalf("expected 3 deadline-bounded ledger calls, got %d", len(ledger.deadlines))
	}
	// a fresh deadline per call: the number read after the stalled client
	// read ends later than the client read's own deadline
	if !ledger.deadlines[1].After(ledger.deadlines[0]) {
		t.Errorf("shared deadline across calls: %v then %v", ledger.deadlines[0], ledger.deadlines[1])
	}
}

func TestRegisterClientReportsCreation(t *testing.T) {
	store := ledgermem.New()
	c := NewInvoiceComposer(store, testRenderer(), filesmem.New(), "f", 0)

	req := ComposeRequest{ClientName: "Max Möller GmbH", Street: "Hauptstraße 1", City: "10115 Berlin"}
	client, created, err := c.RegisterClient(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first registration should report created")
	}
	if client.ClientNumber != "0001" {
		t.Errorf("client number = %q, want 0001", client.ClientNumber)
	}

	again, created, err := c.RegisterClient(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("repeat registration should not report created")
	}
	if again.ClientNumber != "0001" {
		t.Errorf("repeat returned %q, want existing 0001", again.ClientNumber)
	}
	clients, _ := store.ListClients(context.Background())
	if len(clients) != 1 {
		t.Fatalf("duplicate row appended: %+v", clients)
	}
}
