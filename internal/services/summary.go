package services

import (
	"context"
	"fmt"
	"sort"

	"kontor/internal/core"
	"kontor/internal/ledger"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Summary aggregates the Gewerbe ledger for the dashboard.
type Summary struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	Profit            decimal.Decimal `json:"profit"`
	InvoiceCount      int             `json:"invoiceCount"`
	ExpenseCount      int             `json:"expenseCount"`
	AveragePerInvoice decimal.Decimal `json:"averagePerInvoice"`
	Months            []MonthSummary  `json:"months"`
}

// MonthSummary is one point of the per-month series, keyed "YYYY-MM".
type MonthSummary struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

type SummaryService struct {
	invoices ledger.InvoiceLister
	expenses ledger.ExpenseLister
}

func NewSummaryService(invoices ledger.InvoiceLister, expenses ledger.ExpenseLister) *SummaryService {
	return &SummaryService{invoices: invoices, expenses: expenses}
}

// Build reads both ledger tabs concurrently and folds them into totals and a
// chronological monthly series.
func (s *SummaryService) Build(ctx context.Context) (Summary, error) {
	var (
		invoices []core.Invoice
		expenses []core.Expense
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.invoices.ListInvoices(ctx)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(ctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	sum := Summary{
		TotalRevenue:      decimal.Zero,
		TotalExpenses:     decimal.Zero,
		Profit:            decimal.Zero,
		AveragePerInvoice: decimal.Zero,
	}
	months := make(map[string]*MonthSummary)

	for _, inv := range invoices {
		sum.TotalRevenue = sum.TotalRevenue.Add(inv.Amount)
		sum.InvoiceCount++
		if m := monthKey(inv.PaymentDate); m != "" {
			entry := monthEntry(months, m)
			entry.Revenue = entry.Revenue.Add(inv.Amount)
		}
	}
	for _, exp := range expenses {
		sum.TotalExpenses = sum.TotalExpenses.Add(exp.Amount)
		sum.ExpenseCount++
		if m := monthKey(exp.PaymentDate); m != "" {
			entry := monthEntry(months, m)
			entry.Expenses = entry.Expenses.Add(exp.Amount)
		}
	}

	sum.Profit = sum.TotalRevenue.Sub(sum.TotalExpenses)
	if sum.InvoiceCount > 0 {
		sum.AveragePerInvoice = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.InvoiceCount))).Round(2)
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sum.Months = make([]MonthSummary, 0, len(keys))
	for _, k := range keys {
		entry := months[k]
		entry.Profit = entry.Revenue.Sub(entry.Expenses)
		sum.Months = append(sum.Months, *entry)
	}
	return sum, nil
}

func monthEntry(months map[string]*MonthSummary, key string) *MonthSummary {
	if entry, ok := months[key]; ok {
		return entry
	}
	entry := &MonthSummary{
		Month:    key,
		Revenue:  decimal.Zero,
		Expenses: decimal.Zero,
		Profit:   decimal.Zero,
	}
	months[key] = entry
	return entry
}

// monthKey turns a ledger date "DD.MM.YYYY" into "YYYY-MM". Rows with dates
// in any other shape are excluded from the series but still counted in the
// totals.
func monthKey(ledgerDate string) string {
	var day, month, year int
	if _, err := fmt.Sscanf(ledgerDate, "%d.%d.%d", &day, &month, &year); err != nil {
		return ""
	}
	if month < 1 || month > 12 || year < 1000 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}
