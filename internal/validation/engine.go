// Package validation holds the field and form rules checked before any
// mutating call leaves the drafting service.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/shared"
)

// Indian mobile numbers: ten digits, first digit 6-9.
var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// FieldErrors maps field names to user-facing messages.
type FieldErrors map[string]string

// Engine validates drafts. Field rules run per field on blur/change; the
// full set plus the form-level terms rule runs before every submission.
type Engine struct {
	validate *validator.Validate
}

// New constructs an Engine with the custom phone rule registered.
func New() *Engine {
	v := validator.New()
	_ = v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Engine{validate: v}
}

type customerForm struct {
	Name        string `validate:"required"`
	CompanyName string `validate:"required"`
	Phone       string `validate:"required,inphone"`
	Email       string `validate:"omitempty,email"`
}

func formOf(c draft.Customer) customerForm {
	return customerForm{
		Name:        c.Name,
		CompanyName: c.CompanyName,
		Phone:       c.Phone,
		Email:       c.Email,
	}
}

// ValidateCustomer runs every field rule and returns the failures keyed by
// field name. An empty map means the customer block is valid.
func (e *Engine) ValidateCustomer(c draft.Customer) FieldErrors {
	errs := FieldErrors{}
	err := e.validate.Struct(formOf(c))
	if err == nil {
		return errs
	}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := fieldName(fieldErr.StructField())
		errs[field] = messageFor(field, fieldErr.Tag())
	}
	return errs
}

// ValidateField checks a single field, for on-blur validation of just the
// touched input.
func (e *Engine) ValidateField(c draft.Customer, field string) FieldErrors {
	all := e.ValidateCustomer(c)
	errs := FieldErrors{}
	if msg, ok := all[field]; ok {
		errs[field] = msg
	}
	return errs
}

// ValidateDraft runs the full pre-submission check. Field failures come
// back keyed by field; an empty term selection comes back as
// shared.ErrNoTermsSelected so callers can surface it distinctly from the
// generic fix-form-errors message.
func (e *Engine) ValidateDraft(q draft.Quotation) (FieldErrors, error) {
	errs := e.ValidateCustomer(q.Customer)
	if len(q.Terms) == 0 {
		return errs, shared.ErrNoTermsSelected
	}
	if len(errs) > 0 {
		return errs, shared.ErrValidation
	}
	return errs, nil
}

func fieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "CompanyName":
		return "company_name"
	case "Phone":
		return "phone"
	case "Email":
		return "email"
	default:
		return structField
	}
}

func messageFor(field, tag string) string {
	switch tag {
	case "required":
		switch field {
		case "name":
			return "Customer name is required"
		case "company_name":
			return "Company name is required"
		case "phone":
			return "Phone number is required"
		}
		return "This field is required"
	case "inphone":
		return "Phone must be 10 digits starting with 6-9"
	case "email":
		return "Enter a valid email address"
	default:
		return "Invalid value"
	}
}
