package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/shared"
)

func validCustomer() draft.Customer {
	return draft.Customer{
		Name:        "Asha",
		CompanyName: "Asha Pvt Ltd",
		Phone:       "9876543210",
		Email:       "asha@example.com",
	}
}

func TestValidCustomerPasses(t *testing.T) {
	assert.Empty(t, New().ValidateCustomer(validCustomer()))
}

func TestRequiredFields(t *testing.T) {
	e := New()
	errs := e.ValidateCustomer(draft.Customer{})
	assert.Equal(t, "Customer name is required", errs["name"])
	assert.Equal(t, "Company name is required", errs["company_name"])
	assert.Equal(t, "Phone number is required", errs["phone"])
	assert.NotContains(t, errs, "email")
}

func TestPhoneRule(t *testing.T) {
	e := New()
	cases := []struct {
		phone string
		ok    bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"5876543210", false}, // first digit below 6
		{"987654321", false},  // nine digits
		{"98765432100", false},
		{"98765abcde", false},
	}
	for _, tc := range cases {
		c := validCustomer()
		c.Phone = tc.phone
		errs := e.ValidateCustomer(c)
		if tc.ok {
			assert.NotContains(t, errs, "phone", "phone %q", tc.phone)
		} else {
			assert.Equal(t, "Phone must be 10 digits starting with 6-9", errs["phone"], "phone %q", tc.phone)
		}
	}
}

func TestEmailOptionalButShapeChecked(t *testing.T) {
	e := New()
	c := validCustomer()
	c.Email = ""
	assert.Empty(t, e.ValidateCustomer(c))

	c.Email = "not-an-email"
	errs := e.ValidateCustomer(c)
	assert.Equal(t, "Enter a valid email address", errs["email"])
}

func TestValidateFieldTouchedOnly(t *testing.T) {
	e := New()
	errs := e.ValidateField(draft.Customer{}, "phone")
	require.Len(t, errs, 1)
	assert.Contains(t, errs, "phone")
}

func TestValidateDraftTermsRuleIsDistinct(t *testing.T) {
	e := New()
	q := draft.Quotation{Customer: validCustomer()}

	_, err := e.ValidateDraft(q)
	assert.ErrorIs(t, err, shared.ErrNoTermsSelected)

	q.Terms = []int64{1}
	errs, err := e.ValidateDraft(q)
	assert.NoError(t, err)
	assert.Empty(t, errs)

	q.Customer.Phone = "123"
	errs, err = e.ValidateDraft(q)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.NotErrorIs(t, err, shared.ErrNoTermsSelected)
	assert.Contains(t, errs, "phone")
}
