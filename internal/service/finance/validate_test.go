package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

func validIncomeInput() EntryInput {
	return EntryInput{
		Kind:          "income",
		ClubID:        uuid.New(),
		Amount:        "100.00",
		Date:          "2024-03-01",
		Label:         "Donation",
		Description:   "Spring appeal",
		PaymentMethod: "cash",
	}
}

func fieldsOf(verr *domain.ValidationError) []string {
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	return fields
}

func TestValidateEntry_Valid(t *testing.T) {
	parsed, verr := ValidateEntry(validIncomeInput())
	require.Nil(t, verr)
	assert.Equal(t, int64(100_00), parsed.amountCents)
	assert.Equal(t, domain.EntryKindIncome, parsed.kind)
	assert.Equal(t, domain.MethodCash, parsed.method)
	assert.Equal(t, mustDate("2024-03-01"), parsed.date)
}

func TestValidateEntry_CollectsAllViolations(t *testing.T) {
	in := EntryInput{
		Kind:          "income",
		ClubID:        uuid.New(),
		Amount:        "not-a-number",
		Date:          "",
		Label:         "   ",
		Description:   "",
		PaymentMethod: "cash",
	}

	_, verr := ValidateEntry(in)
	require.NotNil(t, verr)
	// Every broken rule reported at once, not fail-fast.
	assert.ElementsMatch(t, []string{"source", "description", "amount", "date"}, fieldsOf(verr))
}

func TestValidateEntry_MutualExclusivity(t *testing.T) {
	campaignID := uuid.New()
	eventID := uuid.New()

	in := validIncomeInput()
	in.CampaignID = &campaignID
	in.EventID = &eventID

	_, verr := ValidateEntry(in)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "cannot be assigned to both event and campaign", verr.Fields[0].Message)
}

func TestValidateEntry_Amount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantMsg string
	}{
		{name: "zero", amount: "0", wantMsg: "amount must be greater than zero"},
		{name: "zero decimal", amount: "0.00", wantMsg: "amount must be greater than zero"},
		{name: "negative", amount: "-10", wantMsg: "amount must be greater than zero"},
		{name: "negative decimal", amount: "-0.01", wantMsg: "amount must be greater than zero"},
		{name: "garbage", amount: "12abc", wantMsg: "amount must be a number"},
		{name: "empty", amount: "", wantMsg: "amount must be a number"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validIncomeInput()
			in.Amount = tc.amount
			_, verr := ValidateEntry(in)
			require.NotNil(t, verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, "amount", verr.Fields[0].Field)
			assert.Equal(t, tc.wantMsg, verr.Fields[0].Message)
		})
	}
}

func TestValidateEntry_PaymentMethodVocabulary(t *testing.T) {
	in := validIncomeInput()
	in.Kind = "expense"
	in.PaymentMethod = "allocated_funds" // income-only method

	_, verr := ValidateEntry(in)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "payment_method", verr.Fields[0].Field)
}

func TestValidateEntry_AllocationNeedsTarget(t *testing.T) {
	in := validIncomeInput()
	in.PaymentMethod = "allocated_funds"
	// No campaign or event: allocating to the club itself is meaningless.

	_, verr := ValidateEntry(in)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "allocated funds must target a campaign or event", verr.Fields[0].Message)

	campaignID := uuid.New()
	in.CampaignID = &campaignID
	_, verr = ValidateEntry(in)
	assert.Nil(t, verr)
}

func TestValidateEntry_Status(t *testing.T) {
	bogus := "rejected"
	pending := "pending"

	in := validIncomeInput()
	in.Kind = "expense"
	in.Label = "Venue"
	in.Status = &bogus
	_, verr := ValidateEntry(in)
	require.NotNil(t, verr)
	assert.Equal(t, "status", verr.Fields[0].Field)

	in.Status = &pending
	parsed, verr := ValidateEntry(in)
	require.Nil(t, verr)
	require.NotNil(t, parsed.status)
	assert.Equal(t, domain.ExpenseStatusPending, *parsed.status)

	// Income never carries a status.
	income := validIncomeInput()
	income.Status = &pending
	_, verr = ValidateEntry(income)
	require.NotNil(t, verr)
	assert.Equal(t, "status", verr.Fields[0].Field)
}
