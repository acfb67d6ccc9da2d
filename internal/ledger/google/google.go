// Package google implements the ledger ports against the Google Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kontor/internal/core"
	ports "kontor/internal/ledger"

	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ranges names the tabs and column spans this client touches. Column order
// is the wire contract; see the row mapping in parse.go.
type Ranges struct {
	Clients         string // Kunden!A:D
	Invoices        string // Einnahmen_Gewerbe!A:G
	InvoiceNumbers  string // Einnahmen_Gewerbe!F:F
	Expenses        string // Ausgaben_Gewerbe!A:G
	Contacts        string // Clients!A:H
	TrackedInvoices string // Invoices!A:N
}

// DefaultRanges matches the spreadsheet layout the dashboard was built
// against.
func DefaultRanges() Ranges {
	return Ranges{
		Clients:         "Kunden!A:D",
		Invoices:        "Einnahmen_Gewerbe!A:G",
		InvoiceNumbers:  "Einnahmen_Gewerbe!F:F",
		Expenses:        "Ausgaben_Gewerbe!A:G",
		Contacts:        "Clients!A:H",
		TrackedInvoices: "Invoices!A:N",
	}
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ranges        Ranges
}

// Ensure interface conformance
var (
	_ ports.ClientLister        = (*Client)(nil)
	_ ports.ClientAppender      = (*Client)(nil)
	_ ports.InvoiceLister       = (*Client)(nil)
	_ ports.InvoiceAppender     = (*Client)(nil)
	_ ports.InvoiceNumberReader = (*Client)(nil)
	_ ports.ExpenseLister       = (*Client)(nil)
	_ ports.ContactStore        = (*Client)(nil)
	_ ports.TrackedInvoiceStore = (*Client)(nil)
)

// New builds a Sheets client from service-account credentials JSON.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID string, ranges Ranges) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	jwtConfig, err := goauth.JWTConfigFromJSON(credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Sheets ledger client ready", "spreadsheet_id", spreadsheetID)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, ranges: ranges}, nil
}

// readRange fetches a whole range; the caller maps rows positionally.
func (c *Client) readRange(ctx context.Context, rng string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, core.Upstream("read "+rng, err)
	}
	return resp.Values, nil
}

// appendRows appends below the last data row of the range. USER_ENTERED lets
// the sheet apply its own number and date coercion, same as manual entry.
func (c *Client) appendRows(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return core.Upstream("append "+rng, err)
	}
	return nil
}

func (c *Client) updateRange(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return core.Upstream("update "+rng, err)
	}
	return nil
}

func (c *Client) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := c.readRange(ctx, c.ranges.Clients)
	if err != nil {
		return nil, err
	}
	out := make([]core.Client, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, clientFromRow(toStrings(row)))
	}
	return out, nil
}

func (c *Client) AppendClient(ctx context.Context, cl core.Client) error {
	return c.appendRows(ctx, c.ranges.Clients, [][]any{clientToRow(cl)})
}

func (c *Client) ListInvoiceNumbers(ctx context.Context) ([]string, error) {
	rows, err := c.readRange(ctx, c.ranges.InvoiceNumbers)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, cell(toStrings(row), 0))
	}
	return out, nil
}

func (c *Client) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := c.readRange(ctx, c.ranges.Invoices)
	if err != nil {
		return nil, err
	}
	out := make([]core.Invoice, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, invoiceFromRow(toStrings(row)))
	}
	return out, nil
}

func (c *Client) AppendInvoice(ctx context.Context, inv core.Invoice) error {
	return c.appendRows(ctx, c.ranges.Invoices, [][]any{invoiceToRow(inv)})
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.readRange(ctx, c.ranges.Expenses)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, expenseFromRow(toStrings(row)))
	}
	return out, nil
}

func (c *Client) ListContacts(ctx context.Context) ([]core.Contact, error) {
	rows, err := c.readRange(ctx, c.ranges.Contacts)
	if err != nil {
		return nil, err
	}
	out := make([]core.Contact, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, contactFromRow(toStrings(row)))
	}
	return out, nil
}

func (c *Client) AppendContact(ctx context.Context, contact core.Contact) error {
	return c.appendRows(ctx, c.ranges.Contacts, [][]any{contactToRow(contact)})
}

// UpdateContact rewrites the row whose ID column matches. Row position is
// resolved by a fresh scan, so a concurrent append can shift rows between
// read and write; acceptable for a single-user tool.
func (c *Client) UpdateContact(ctx context.Context, contact core.Contact) error {
	contacts, err := c.ListContacts(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range contacts {
		if existing.ID == contact.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("contact %s: %w", contact.ID, core.ErrNotFound)
	}
	rng := rowRange(c.ranges.Contacts, idx)
	return c.updateRange(ctx, rng, [][]any{contactToRow(contact)})
}

func (c *Client) ListTrackedInvoices(ctx context.Context) ([]core.TrackedInvoice, error) {
	rows, err := c.readRange(ctx, c.ranges.TrackedInvoices)
	if err != nil {
		return nil, err
	}
	out := make([]core.TrackedInvoice, 0, len(rows))
	for _, row := range skipHeader(rows) {
		out = append(out, trackedInvoiceFromRow(toStrings(row)))
	}
	return out, nil
}

func (c *Client) AppendTrackedInvoice(ctx context.Context, inv core.TrackedInvoice) error {
	return c.appendRows(ctx, c.ranges.TrackedInvoices, [][]any{trackedInvoiceToRow(inv)})
}

func (c *Client) UpdateTrackedInvoice(ctx context.Context, inv core.TrackedInvoice) error {
	invoices, err := c.ListTrackedInvoices(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range invoices {
		if existing.ID == inv.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("invoice %s: %w", inv.ID, core.ErrNotFound)
	}
	rng := rowRange(c.ranges.TrackedInvoices, idx)
	return c.updateRange(ctx, rng, [][]any{trackedInvoiceToRow(inv)})
}
