package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kontor/internal/core"
	"kontor/internal/files"
	"kontor/internal/ledger"
	"kontor/internal/pdf"
)

// ComposerLedger is the slice of the ledger the composer needs.
type ComposerLedger interface {
	ledger.ClientLister
	ledger.ClientAppender
	ledger.InvoiceNumberReader
	ledger.InvoiceAppender
}

// ComposeRequest describes one invoice to issue. The client is addressed by
// Kundennummer; an unknown number fails the request. Setting NewClient
// instead registers a client from ClientName/Street/City before issuing.
type ComposeRequest struct {
	ClientNumber  string
	NewClient     bool
	ClientName    string
	Street        string
	City          string
	Items         []core.LineItem
	IssueDate     time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PaymentMethod core.PaymentMethod
}

// ComposeResult reports what was written where.
type ComposeResult struct {
	InvoiceNumber string `json:"invoiceNumber"`
	ClientNumber  string `json:"clientNumber"`
	FileName      string `json:"fileName"`
	DocumentLink  string `json:"documentLink"`
	Subtotal      string `json:"subtotal"`
}

const defaultCallTimeout = 15 * time.Second

// InvoiceComposer runs the full issue flow: resolve the client, allocate the
// next invoice number, render the PDF, store it, append the ledger row. A
// process-level mutex serializes the read-allocate-append window so two
// requests cannot take the same number. There is no rollback; if the row
// append fails after the upload the PDF stays in the document store and the
// number is reused by the next attempt.
//
// Each call to the ledger or the document store runs under its own deadline
// so one slow upstream cannot eat the budget of the calls after it.
type InvoiceComposer struct {
	mu          sync.Mutex
	ledger      ComposerLedger
	renderer    *pdf.Renderer
	uploader    files.Uploader
	folderID    string
	callTimeout time.Duration
}

func NewInvoiceComposer(l ComposerLedger, renderer *pdf.Renderer, uploader files.Uploader, folderID string, callTimeout time.Duration) *InvoiceComposer {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &InvoiceComposer{ledger: l, renderer: renderer, uploader: uploader, folderID: folderID, callTimeout: callTimeout}
}

const ledgerDateLayout = "02.01.2006"

func (c *InvoiceComposer) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *InvoiceComposer) Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	if req.NewClient {
		if strings.TrimSpace(req.ClientName) == "" {
			return ComposeResult{}, core.ErrEmptyClientName
		}
	} else if strings.TrimSpace(req.ClientNumber) == "" {
		return ComposeResult{}, core.ErrMissingClientNumber
	}
	if len(req.Items) == 0 {
		return ComposeResult{}, core.ErrEmptyLineItems
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := c.resolveClient(ctx, req)
	if err != nil {
		return ComposeResult{}, err
	}

	numbers, err := c.listInvoiceNumbers(ctx)
	if err != nil {
		return ComposeResult{}, fmt.Errorf("list invoice numbers: %w", err)
	}
	invoiceNumber := core.NextInvoiceNumber(numbers)

	items := core.AssignPositions(req.Items)
	doc := core.InvoiceDocument{
		InvoiceNumber: invoiceNumber,
		IssueDate:     req.IssueDate,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		Client:        client,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
	}
	rendered, err := c.renderer.Render(doc)
	if err != nil {
		return ComposeResult{}, err
	}

	fileName := pdf.Filename(invoiceNumber, client.Name)
	ref, err := c.uploadPDF(ctx, fileName, rendered)
	if err != nil {
		return ComposeResult{}, fmt.Errorf("store invoice pdf: %w", err)
	}

	subtotal := core.Subtotal(items)
	row := core.Invoice{
		PaymentDate:   req.IssueDate.Format(ledgerDateLayout),
		Amount:        subtotal,
		Description:   core.ServiceDescription(items),
		ClientName:    client.Name,
		PaymentMethod: req.PaymentMethod,
		InvoiceNumber: invoiceNumber,
		DocumentLink:  ref.ViewLink,
	}
	if err := c.appendInvoice(ctx, row); err != nil {
		return ComposeResult{}, fmt.Errorf("append ledger row: %w", err)
	}

	slog.InfoContext(ctx, "Invoice issued",
		"invoice_number", invoiceNumber,
		"client", client.Name,
		"subtotal", subtotal.String(),
		"file", fileName)

	return ComposeResult{
		InvoiceNumber: invoiceNumber,
		ClientNumber:  client.ClientNumber,
		FileName:      fileName,
		DocumentLink:  ref.ViewLink,
		Subtotal:      subtotal.String(),
	}, nil
}

// RegisterClient creates a client ahead of invoicing, under the same lock as
// Compose so number allocation stays serialized. A client whose name already
// exists is returned as-is with created=false instead of a duplicate row.
func (c *InvoiceComposer) RegisterClient(ctx context.Context, req ComposeRequest) (core.Client, bool, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return core.Client{}, false, core.ErrEmptyClientName
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	clients, err := c.listClients(ctx)
	if err != nil {
		return core.Client{}, false, fmt.Errorf("list clients: %w", err)
	}
	for _, existing := range clients {
		if existing.Name == name {
			return existing, false, nil
		}
	}
	client, err := c.registerClient(ctx, req, clients)
	if err != nil {
		return core.Client{}, false, err
	}
	return client, true, nil
}

// resolveClient looks the client up by Kundennummer, or registers a new one
// when the request says so. A number that matches no row is an error; the
// issue flow never invents clients on its own.
func (c *InvoiceComposer) resolveClient(ctx context.Context, req ComposeRequest) (core.Client, error) {
	clients, err := c.listClients(ctx)
	if err != nil {
		return core.Client{}, fmt.Errorf("list clients: %w", err)
	}

	if req.NewClient {
		return c.registerClient(ctx, req, clients)
	}

	number := strings.TrimSpace(req.ClientNumber)
	for _, existing := range clients {
		if existing.ClientNumber == number {
			return existing, nil
		}
	}
	return core.Client{}, fmt.Errorf("client %s: %w", number, core.ErrNotFound)
}

// registerClient appends a new row with the next free Kundennummer. Callers
// hold the mutex and pass the client list they already read.
func (c *InvoiceComposer) registerClient(ctx context.Context, req ComposeRequest, clients []core.Client) (core.Client, error) {
	numbers := make([]string, 0, len(clients))
	for _, existing := range clients {
		numbers = append(numbers, existing.ClientNumber)
	}
	client := core.Client{
		Name:         strings.TrimSpace(req.ClientName),
		ClientNumber: core.NextClientNumber(numbers),
		Street:       strings.TrimSpace(req.Street),
		City:         strings.TrimSpace(req.City),
	}
	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	if err := c.ledger.AppendClient(cctx, client); err != nil {
		return core.Client{}, fmt.Errorf("register client: %w", err)
	}
	slog.InfoContext(ctx, "Client registered", "client", client.Name, "client_number", client.ClientNumber)
	return client, nil
}

func (c *InvoiceComposer) listClients(ctx context.Context) ([]core.Client, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.ledger.ListClients(cctx)
}

func (c *InvoiceComposer) listInvoiceNumbers(ctx context.Context) ([]string, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.ledger.ListInvoiceNumbers(cctx)
}

func (c *InvoiceComposer) uploadPDF(ctx context.Context, fileName string, rendered []byte) (core.FileRef, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.uploader.Upload(cctx, c.folderID, fileName, "application/pdf", bytes.NewReader(rendered))
}

func (c *InvoiceComposer) appendInvoice(ctx context.Context, row core.Invoice) error {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.ledger.AppendInvoice(cctx, row)
}
