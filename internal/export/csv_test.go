package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestWriteEntries_Income(t *testing.T) {
	entries := []domain.LedgerEntry{
		{
			ID:            uuid.New(),
			Kind:          domain.EntryKindIncome,
			AmountCents:   1234_56,
			Date:          mustDate(t, "2024-03-15"),
			Label:         "Spring Gala",
			Description:   "ticket sales",
			PaymentMethod: domain.MethodCard,
			Reference:     "batch-42",
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteEntries(&sb, domain.EntryKindIncome, entries))

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Source", "Description", "Amount", "Payment Method", "Reference"}, rows[0])
	assert.Equal(t, []string{"2024-03-15", "Spring Gala", "ticket sales", "1234.56", "card", "batch-42"}, rows[1])
}

func TestWriteEntries_EscapesQuotesAndCommas(t *testing.T) {
	entries := []domain.LedgerEntry{
		{
			ID:            uuid.New(),
			Kind:          domain.EntryKindIncome,
			AmountCents:   10_00,
			Date:          mustDate(t, "2024-01-01"),
			Label:         `Bake Sale, "Main St"`,
			Description:   "cookies, brownies\nand pies",
			PaymentMethod: domain.MethodCash,
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteEntries(&sb, domain.EntryKindIncome, entries))

	// The output must survive a round trip through a conforming reader with
	// the awkward characters intact.
	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `Bake Sale, "Main St"`, rows[1][1])
	assert.Equal(t, "cookies, brownies\nand pies", rows[1][2])
}

func TestWriteEntries_ExpenseColumns(t *testing.T) {
	paid := domain.ExpenseStatusPaid
	entries := []domain.LedgerEntry{
		{
			ID:            uuid.New(),
			Kind:          domain.EntryKindExpense,
			AmountCents:   75_00,
			Date:          mustDate(t, "2024-02-01"),
			Label:         "Supplies",
			Description:   "poster board",
			PaymentMethod: domain.MethodCheck,
			Reference:     "Office Depot",
			Status:        &paid,
		},
		{
			ID:            uuid.New(),
			Kind:          domain.EntryKindExpense,
			AmountCents:   20_00,
			Date:          mustDate(t, "2024-02-02"),
			Label:         "Printing",
			Description:   "flyers",
			PaymentMethod: domain.MethodCash,
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteEntries(&sb, domain.EntryKindExpense, entries))

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Category", "Description", "Amount", "Payment Method", "Vendor", "Status"}, rows[0])
	assert.Equal(t, "paid", rows[1][6])
	assert.Equal(t, "", rows[2][6])
}

func TestWriteEntries_SkipsOtherKind(t *testing.T) {
	entries := []domain.LedgerEntry{
		{ID: uuid.New(), Kind: domain.EntryKindExpense, AmountCents: 5_00, Date: mustDate(t, "2024-01-01"), Label: "x", PaymentMethod: domain.MethodCash},
	}

	var sb strings.Builder
	require.NoError(t, WriteEntries(&sb, domain.EntryKindIncome, entries))

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
