package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`(\d+)`)

// NextInvoiceNumber scans the existing invoice-number cells, takes the first
// run of digits from each ("001" and "RE-2025-001" both count as 1), and
// returns max+1 zero-padded to three digits. Values past 999 pass through at
// natural width. Cells without digits contribute nothing.
func NextInvoiceNumber(existing []string) string {
	max := 0
	for _, cell := range existing {
		m := digitRun.FindString(cell)
		if m == "" {
			continue
		}
		if n, err := strconv.Atoi(m); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%03d", max+1)
}

// NextClientNumber works like NextInvoiceNumber but strips every non-digit
// before parsing and pads to four digits.
func NextClientNumber(existing []string) string {
	max := 0
	for _, cell := range existing {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, cell)
		if digits == "" {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%04d", max+1)
}
