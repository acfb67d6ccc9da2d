// Package core holds the domain types and the parsing/formatting rules
// shared by the ledger adapters, the composer and the PDF renderer.
//
// This file covers German-locale money handling: the ledger stores amounts
// as German decimals ("1.234,56") while the Sheets API hands values back as
// plain strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseGermanDecimal parses an amount in German notation: "." is a thousands
// separator and "," the decimal separator. Plain dot-decimal input without
// thousands grouping ("100.50") is NOT valid German notation and collapses
// to 10050; callers writing to the ledger must use decimal.String().
// Empty or unparsable input yields zero, matching the read path's
// best-effort contract.
func ParseGermanDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatEUR renders an amount in German notation with a trailing euro sign,
// e.g. "1.234,56 €".
func FormatEUR(d decimal.Decimal) string {
	return FormatGermanDecimal(d) + " €"
}

// FormatGermanDecimal renders an amount with two decimal places, comma as
// decimal separator and period-grouped thousands.
func FormatGermanDecimal(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}
