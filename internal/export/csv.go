// Package export flattens ledger entries into CSV for download. It leans on
// encoding/csv so embedded quotes and separators are escaped correctly
// instead of just wrapping every field in quotes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

var incomeHeader = []string{"Date", "Source", "Description", "Amount", "Payment Method", "Reference"}

var expenseHeader = []string{"Date", "Category", "Description", "Amount", "Payment Method", "Vendor", "Status"}

// WriteEntries streams entries of one kind as CSV. Income and expense use
// distinct fixed column sets; amounts are plain two-decimal strings with no
// currency marker.
func WriteEntries(w io.Writer, kind domain.EntryKind, entries []domain.LedgerEntry) error {
	cw := csv.NewWriter(w)

	header := incomeHeader
	if kind == domain.EntryKindExpense {
		header = expenseHeader
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("WriteEntries: header: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.Kind != kind {
			continue
		}
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Label,
			e.Description,
			domain.CentsToDecimalString(e.AmountCents),
			string(e.PaymentMethod),
			e.Reference,
		}
		if kind == domain.EntryKindExpense {
			status := ""
			if e.Status != nil {
				status = string(*e.Status)
			}
			record = append(record, status)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteEntries: row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteEntries: flush: %w", err)
	}
	return nil
}
