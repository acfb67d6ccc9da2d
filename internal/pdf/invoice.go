// Package pdf renders German invoice documents.
package pdf

import (
	"bytes"
	"fmt"
	"regexp"

	"kontor/internal/core"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Sender is the issuer block printed on every invoice.
type Sender struct {
	Name    string
	Street  string
	City    string
	UstID   string
	Bank    string
	IBAN    string
	Email   string
	Website string
	Phone   string
}

// TaxConfig controls the Umsatzsteuer section. Under the
// Kleinunternehmerregelung no tax is charged regardless of the rate.
type TaxConfig struct {
	Rate             decimal.Decimal
	Kleinunternehmer bool
}

func (t TaxConfig) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if t.Kleinunternehmer {
		return decimal.Zero
	}
	return subtotal.Mul(t.Rate).Div(decimal.NewFromInt(100))
}

type Renderer struct {
	Sender Sender
	Tax    TaxConfig
}

const dateLayout = "02.01.2006"

// Render produces the finished A4 invoice PDF.
func (r *Renderer) Render(doc core.InvoiceDocument) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	subtotal := core.Subtotal(doc.Items)
	taxAmount := r.Tax.Amount(subtotal)
	total := subtotal.Add(taxAmount)

	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(tr("Rechnung Nr. "+doc.InvoiceNumber), false)
	p.SetMargins(18, 18, 18)
	p.SetAutoPageBreak(true, 35)
	p.AddPage()

	pageW, _ := p.GetPageSize()
	contentW := pageW - 36

	// sender one-liner above the address window
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(102, 102, 102)
	p.CellFormat(contentW, 4, tr(fmt.Sprintf("%s, %s, %s", r.Sender.Name, r.Sender.Street, r.Sender.City)), "B", 1, "L", false, 0, "")
	p.Ln(8)

	// recipient left, invoice metadata right
	top := p.GetY()
	p.SetTextColor(26, 26, 26)
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(90, 5, tr(doc.Client.Name), "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(90, 5, tr(doc.Client.Street), "", 1, "L", false, 0, "")
	p.CellFormat(90, 5, tr(doc.Client.City), "", 1, "L", false, 0, "")

	p.SetY(top)
	period := doc.PeriodStart.Format(dateLayout) + " - " + doc.PeriodEnd.Format(dateLayout)
	meta := [][2]string{
		{"Rechnungs-Nr:", doc.InvoiceNumber},
		{"Rechnungsdatum:", doc.IssueDate.Format(dateLayout)},
		{"Leistungszeitraum:", period},
		{"Ihre Kundennummer:", doc.Client.ClientNumber},
	}
	for _, row := range meta {
		p.SetX(18 + contentW - 85)
		p.CellFormat(40, 5, tr(row[0]), "", 0, "L", false, 0, "")
		p.CellFormat(45, 5, tr(row[1]), "", 1, "L", false, 0, "")
	}
	p.Ln(12)

	p.SetFont("Helvetica", "B", 14)
	p.CellFormat(contentW, 7, tr("Rechnung Nr. "+doc.InvoiceNumber), "", 1, "L", false, 0, "")
	p.Ln(4)

	p.SetFont("Helvetica", "", 10)
	greeting := "Sehr geehrte Damen und Herren,\nvielen Dank für Ihren Auftrag und das damit verbundene Vertrauen. Hiermit stelle ich Ihnen folgende Leistungen in Rechnung:"
	p.MultiCell(contentW, 5, tr(greeting), "", "L", false)
	p.Ln(6)

	r.itemTable(p, tr, contentW, doc.Items)
	r.totals(p, tr, contentW, subtotal, taxAmount, total)

	if r.Tax.Kleinunternehmer {
		p.Ln(8)
		p.SetFont("Helvetica", "", 8)
		p.SetTextColor(102, 102, 102)
		p.MultiCell(contentW, 4, tr("*Gemäß der Kleinunternehmerregelung §19 UStG wird keine Umsatzsteuer berechnet"), "", "L", false)
		p.SetTextColor(26, 26, 26)
	}

	p.Ln(14)
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(contentW, 5, tr("Mit freundlichen Grüßen"), "", 1, "L", false, 0, "")
	p.Ln(8)
	p.CellFormat(contentW, 5, tr(r.Sender.Name), "", 1, "L", false, 0, "")

	r.footer(p, tr, contentW)

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var itemCols = []struct {
	width float64
	align string
	label string
}{
	{14, "L", "Pos."},
	{73, "L", "Beschreibung"},
	{21, "C", "Menge"},
	{31, "R", "Einzelpreis"},
	{35, "R", "Gesamtpreis"},
}

func (r *Renderer) itemTable(p *gofpdf.Fpdf, tr func(string) string, contentW float64, items []core.LineItem) {
	p.SetFont("Helvetica", "B", 10)
	for _, col := range itemCols {
		p.CellFormat(col.width, 6, tr(col.label), "B", 0, col.align, false, 0, "")
	}
	p.Ln(-1)

	p.SetFont("Helvetica", "", 10)
	for _, item := range items {
		cells := []string{
			fmt.Sprintf("%d", item.Position),
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			core.FormatEUR(item.UnitPrice),
			core.FormatEUR(item.Total),
		}
		for i, col := range itemCols {
			p.CellFormat(col.width, 7, tr(cells[i]), "B", 0, col.align, false, 0, "")
		}
		p.Ln(-1)
	}
	p.Ln(6)
}

func (r *Renderer) totals(p *gofpdf.Fpdf, tr func(string) string, contentW float64, subtotal, taxAmount, total decimal.Decimal) {
	labelX := 18 + contentW - 80

	taxLabel := fmt.Sprintf("Umsatzsteuer %s%%", r.Tax.Rate.String())
	if r.Tax.Kleinunternehmer {
		taxLabel = fmt.Sprintf("Umsatzsteuer* %s%%", decimal.Zero.String())
	}

	p.SetFont("Helvetica", "", 10)
	p.SetX(labelX)
	p.CellFormat(45, 5, tr("Zwischensumme"), "", 0, "L", false, 0, "")
	p.CellFormat(35, 5, tr(core.FormatEUR(subtotal)), "", 1, "R", false, 0, "")

	p.SetX(labelX)
	p.CellFormat(45, 5, tr(taxLabel), "", 0, "L", false, 0, "")
	p.CellFormat(35, 5, tr(core.FormatEUR(taxAmount)), "", 1, "R", false, 0, "")

	p.SetFont("Helvetica", "B", 12)
	p.SetX(labelX)
	p.CellFormat(45, 7, tr("Gesamtbetrag"), "T", 0, "L", false, 0, "")
	p.CellFormat(35, 7, tr(core.FormatEUR(total)), "T", 1, "R", false, 0, "")
}

func (r *Renderer) footer(p *gofpdf.Fpdf, tr func(string) string, contentW float64) {
	_, pageH := p.GetPageSize()
	p.SetY(pageH - 32)
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(102, 102, 102)
	p.CellFormat(contentW, 1, "", "T", 1, "L", false, 0, "")
	p.Ln(1)

	colW := contentW / 3
	cols := [][]string{
		{r.Sender.Name, r.Sender.Street + ", " + r.Sender.City},
		{"Ust-ID: " + r.Sender.UstID, "Bank: " + r.Sender.Bank, "IBAN: " + r.Sender.IBAN},
		{"E-Mail: " + r.Sender.Email, "Web: " + r.Sender.Website, "Tel: " + r.Sender.Phone},
	}
	for line := 0; line < 3; line++ {
		for _, col := range cols {
			text := ""
			if line < len(col) {
				text = col[line]
			}
			p.CellFormat(colW, 4, tr(text), "", 0, "L", false, 0, "")
		}
		p.Ln(-1)
	}
	p.SetTextColor(26, 26, 26)
}

var (
	filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9äöüÄÖÜß\s-]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Filename builds the Drive file name for a rendered invoice. Characters
// outside the German-safe set are dropped, whitespace runs collapse to a
// single underscore.
func Filename(invoiceNumber, clientName string) string {
	name := filenameUnsafe.ReplaceAllString(clientName, "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	return fmt.Sprintf("Rechnung_%s_%s.pdf", invoiceNumber, name)
}
