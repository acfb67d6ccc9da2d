package google

import (
	"encoding/json"
	"fmt"
	"strings"

	"kontor/internal/core"

	"github.com/shopspring/decimal"
)

// Row mapping is positional. Every tab carries a header row which the list
// methods drop; short rows read as empty cells, values beyond the mapped
// columns are ignored.

func skipHeader(rows [][]any) [][]any {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// plainDecimal reads a dot-notation amount, zero when unparsable.
func plainDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// rowRange converts a column span like "Clients!A:H" into the concrete range
// of one data row. idx is zero-based over data rows, so sheet row idx+2 with
// the header on row 1.
func rowRange(span string, idx int) string {
	sheet, cols, ok := strings.Cut(span, "!")
	if !ok {
		return span
	}
	first, last, ok := strings.Cut(cols, ":")
	if !ok {
		return span
	}
	row := idx + 2
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, first, row, last, row)
}

// Kunden!A:D = Name | Kundennummer | Straße | Ort

func clientFromRow(row []string) core.Client {
	return core.Client{
		Name:         cell(row, 0),
		ClientNumber: cell(row, 1),
		Street:       cell(row, 2),
		City:         cell(row, 3),
	}
}

func clientToRow(c core.Client) []any {
	return []any{c.Name, c.ClientNumber, c.Street, c.City}
}

// Einnahmen_Gewerbe!A:G = Datum | Betrag | Verwendungszweck | Kunde |
// Zahlungsart | Rechnungsnummer | Beleg

func invoiceFromRow(row []string) core.Invoice {
	return core.Invoice{
		PaymentDate:   cell(row, 0),
		Amount:        core.ParseGermanDecimal(cell(row, 1)),
		Description:   cell(row, 2),
		ClientName:    cell(row, 3),
		PaymentMethod: core.PaymentMethod(cell(row, 4)),
		InvoiceNumber: cell(row, 5),
		DocumentLink:  cell(row, 6),
	}
}

func invoiceToRow(inv core.Invoice) []any {
	return []any{
		inv.PaymentDate,
		inv.Amount.String(),
		inv.Description,
		inv.ClientName,
		string(inv.PaymentMethod),
		inv.InvoiceNumber,
		inv.DocumentLink,
	}
}

// Ausgaben_Gewerbe!A:G = Datum | Betrag | Verwendungszweck | Empfänger |
// Zahlungsart | Referenz | Beleg

func expenseFromRow(row []string) core.Expense {
	return core.Expense{
		PaymentDate:   cell(row, 0),
		Amount:        core.ParseGermanDecimal(cell(row, 1)),
		Purpose:       cell(row, 2),
		Vendor:        cell(row, 3),
		PaymentMethod: cell(row, 4),
		Reference:     cell(row, 5),
		DocumentLink:  cell(row, 6),
	}
}

// Clients!A:H = ID | Name | Email | Phone | Company | Business | Notes |
// CreatedAt

func contactFromRow(row []string) core.Contact {
	return core.Contact{
		ID:        cell(row, 0),
		Name:      cell(row, 1),
		Email:     cell(row, 2),
		Phone:     cell(row, 3),
		Company:   cell(row, 4),
		Business:  core.BusinessLine(cell(row, 5)),
		Notes:     cell(row, 6),
		CreatedAt: cell(row, 7),
	}
}

func contactToRow(c core.Contact) []any {
	return []any{c.ID, c.Name, c.Email, c.Phone, c.Company, string(c.Business), c.Notes, c.CreatedAt}
}

// Invoices!A:N = ID | Rechnungsnummer | ClientID | ClientName | Business |
// IssueDate | DueDate | Items (JSON) | Subtotal | Tax | Total | Status |
// PDFURL | CreatedAt

func trackedInvoiceFromRow(row []string) core.TrackedInvoice {
	var items []core.LineItem
	if raw := cell(row, 7); raw != "" {
		// a corrupt cell yields an invoice without items rather than an error
		_ = json.Unmarshal([]byte(raw), &items)
	}
	return core.TrackedInvoice{
		ID:            cell(row, 0),
		InvoiceNumber: cell(row, 1),
		ClientID:      cell(row, 2),
		ClientName:    cell(row, 3),
		Business:      core.BusinessLine(cell(row, 4)),
		IssueDate:     cell(row, 5),
		DueDate:       cell(row, 6),
		Items:         items,
		Subtotal:      plainDecimal(cell(row, 8)),
		Tax:           plainDecimal(cell(row, 9)),
		Total:         plainDecimal(cell(row, 10)),
		Status:        core.InvoiceStatus(cell(row, 11)),
		PDFURL:        cell(row, 12),
		CreatedAt:     cell(row, 13),
	}
}

func trackedInvoiceToRow(inv core.TrackedInvoice) []any {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		items = []byte("[]")
	}
	return []any{
		inv.ID,
		inv.InvoiceNumber,
		inv.ClientID,
		inv.ClientName,
		string(inv.Business),
		inv.IssueDate,
		inv.DueDate,
		string(items),
		inv.Subtotal.String(),
		inv.Tax.String(),
		inv.Total.String(),
		string(inv.Status),
		inv.PDFURL,
		inv.CreatedAt,
	}
}
