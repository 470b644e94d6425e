package draft

import "github.com/google/uuid"

// Mode identifies how the drafting workflow was entered. It is decided once
// by the caller that opens the draft and never re-derived downstream.
type Mode string

const (
	ModeCreate    Mode = "create"
	ModeEdit      Mode = "edit"
	ModeDuplicate Mode = "duplicate"
)

// DiscountType selects how the global discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

// LineItem is one product row on the draft. ID is a stable identifier
// generated at row creation; search state and row updates address the row by
// this ID rather than by position, so removals never shift state onto a
// neighbouring row.
type LineItem struct {
	ID              uuid.UUID `json:"id"`
	ProductID       *int64    `json:"product_id,omitempty"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	PercentDiscount float64   `json:"percent_discount"`
	ImageURL        string    `json:"image_url,omitempty"`
}

// Persisted reports whether the line already references a product record.
func (li LineItem) Persisted() bool {
	return li.ProductID != nil
}

// DiscountConfig is the draft-wide discount. Value is ignored while Enabled
// is false but survives toggling so re-enabling reproduces the same amount.
type DiscountConfig struct {
	Enabled bool         `json:"enabled"`
	Type    DiscountType `json:"type"`
	Value   float64      `json:"value"`
}

// TaxConfig holds the tax rate and the inclusive flag. In inclusive mode no
// tax is added on top; the displayed tax line is zero.
type TaxConfig struct {
	RatePercent float64 `json:"rate_percent"`
	Inclusive   bool    `json:"inclusive"`
}

// AdditionalCharge is a named flat amount added after the global discount.
type AdditionalCharge struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Customer carries the customer fields of the draft. A nil ID signals a new
// customer to be created server-side alongside the quotation.
type Customer struct {
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	GSTNumber   string `json:"gst_number"`
}

// Quotation is the aggregate draft state. FollowUpDate is held in display
// form (DD-MM-YYYY); conversion to API form happens at the upstream boundary.
type Quotation struct {
	Customer         Customer         `json:"customer"`
	LeadID           *int64           `json:"lead_id,omitempty"`
	Terms            []int64          `json:"terms"`
	Lines            []LineItem       `json:"lines"`
	Discount         DiscountConfig   `json:"discount"`
	Tax              TaxConfig        `json:"tax"`
	AdditionalCharge AdditionalCharge `json:"additional_charge"`
	FollowUpDate     string           `json:"follow_up_date"`
	ExistingID       *int64           `json:"existing_id,omitempty"`
	Mode             Mode             `json:"mode"`
	SendImmediately  bool             `json:"send_immediately"`
	Status           string           `json:"status"`
}

// HasTerm reports whether a term id is already selected.
func (q Quotation) HasTerm(id int64) bool {
	for _, t := range q.Terms {
		if t == id {
			return true
		}
	}
	return false
}

// Line returns the line with the given id, if present.
func (q Quotation) Line(id uuid.UUID) (LineItem, bool) {
	for _, li := range q.Lines {
		if li.ID == id {
			return li, true
		}
	}
	return LineItem{}, false
}
