package draft

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/quotedesk/quotedesk/internal/shared"
)

var (
	// ErrLastLine is returned when removing the only remaining line.
	ErrLastLine = errors.New("a draft must keep at least one line")
	// ErrLineNotFound is returned when a line id does not exist on the draft.
	ErrLineNotFound = errors.New("line not found")
)

// Store is the single source of truth for one draft. All mutations go
// through its methods; each mutation that affects calculator inputs
// recomputes the totals synchronously under the same lock, so a reader can
// never observe totals that lag the draft.
type Store struct {
	mu     sync.Mutex
	q      Quotation
	totals Totals

	// onRemoveLine lets the owner drop per-row state (search resolvers)
	// when a line goes away.
	onRemoveLine func(uuid.UUID)
}

// NewStore returns a store holding an empty draft with one blank line.
func NewStore(mode Mode) *Store {
	s := &Store{}
	s.q = emptyQuotation(mode)
	s.recompute()
	return s
}

func emptyQuotation(mode Mode) Quotation {
	return Quotation{
		Mode:     mode,
		Discount: DiscountConfig{Type: DiscountPercentage},
		Lines:    []LineItem{{ID: uuid.New(), Quantity: 1}},
	}
}

// OnRemoveLine registers a callback invoked with the id of every removed line.
func (s *Store) OnRemoveLine(fn func(uuid.UUID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemoveLine = fn
}

// Seed replaces the draft with state fetched for an existing quotation.
// Mode is preserved from the store: the same fetched data seeds both edit
// and duplicate drafts, only the mode differs. In duplicate mode the
// existing id is kept for reference but submission still creates a new record.
func (s *Store) Seed(q Quotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.Mode = s.q.Mode
	if len(q.Lines) == 0 {
		q.Lines = []LineItem{{ID: uuid.New(), Quantity: 1}}
	}
	for i := range q.Lines {
		if q.Lines[i].ID == uuid.Nil {
			q.Lines[i].ID = uuid.New()
		}
	}
	if q.Discount.Type == "" {
		q.Discount.Type = DiscountPercentage
	}
	s.q = q
	s.recompute()
}

// Reset returns the store to a fresh empty draft, keeping the mode.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q = emptyQuotation(s.q.Mode)
	s.recompute()
}

// Snapshot returns a deep copy of the current draft.
func (s *Store) Snapshot() Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Quotation {
	q := s.q
	q.Lines = append([]LineItem(nil), s.q.Lines...)
	q.Terms = append([]int64(nil), s.q.Terms...)
	return q
}

// Totals returns the current derived totals at full precision.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Mode returns the workflow mode the draft was opened with.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Mode
}

func (s *Store) recompute() {
	s.totals = ComputeTotals(s.q.Lines, s.q.Discount, s.q.Tax, s.q.AdditionalCharge)
}

// AddLine appends a blank line and returns it.
func (s *Store) AddLine() LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	li := LineItem{ID: uuid.New(), Quantity: 1}
	s.q.Lines = append(s.q.Lines, li)
	s.recompute()
	return li
}

// RemoveLine deletes the line with the given id. At least one line must
// remain. The removed line's per-row state is released via the OnRemoveLine
// callback; every other line keeps its id, so no state shifts between rows.
func (s *Store) RemoveLine(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.q.Lines) <= 1 {
		return ErrLastLine
	}
	idx := -1
	for i, li := range s.q.Lines {
		if li.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrLineNotFound
	}
	s.q.Lines = append(s.q.Lines[:idx], s.q.Lines[idx+1:]...)
	s.recompute()
	if s.onRemoveLine != nil {
		s.onRemoveLine(id)
	}
	return nil
}

// LinePatch carries partial line updates. Numeric fields arrive as the raw
// form text and normalize through parse-or-default: invalid input becomes 0,
// never an error.
type LinePatch struct {
	Name            *string `json:"name,omitempty"`
	Quantity        *string `json:"quantity,omitempty"`
	UnitPrice       *string `json:"unit_price,omitempty"`
	PercentDiscount *string `json:"percent_discount,omitempty"`
	ImageURL        *string `json:"image_url,omitempty"`
}

// UpdateLine merges a patch into the line with the given id. Typing a new
// name clears any previously selected product reference: the row is a
// free-text product again until resolved or re-selected.
func (s *Store) UpdateLine(id uuid.UUID, patch LinePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.q.Lines {
		if s.q.Lines[i].ID != id {
			continue
		}
		li := &s.q.Lines[i]
		if patch.Name != nil {
			li.Name = *patch.Name
			li.ProductID = nil
			li.ImageURL = ""
		}
		if patch.Quantity != nil {
			li.Quantity = shared.ParseIntOrZero(*patch.Quantity)
		}
		if patch.UnitPrice != nil {
			li.UnitPrice = shared.ParseFloatOrZero(*patch.UnitPrice)
		}
		if patch.PercentDiscount != nil {
			li.PercentDiscount = shared.ParseFloatOrZero(*patch.PercentDiscount)
		}
		if patch.ImageURL != nil {
			li.ImageURL = *patch.ImageURL
		}
		s.recompute()
		return nil
	}
	return ErrLineNotFound
}

// SelectProduct merges a picked search candidate into the targeted line.
func (s *Store) SelectProduct(lineID uuid.UUID, productID int64, name string, price float64, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.q.Lines {
		if s.q.Lines[i].ID != lineID {
			continue
		}
		li := &s.q.Lines[i]
		li.ProductID = &productID
		li.Name = name
		li.UnitPrice = price
		li.ImageURL = imageURL
		if li.Quantity <= 0 {
			li.Quantity = 1
		}
		s.recompute()
		return nil
	}
	return ErrLineNotFound
}

// SetProductID records the persisted product reference for a line. Used
// during product resolution before submission.
func (s *Store) SetProductID(lineID uuid.UUID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.q.Lines {
		if s.q.Lines[i].ID == lineID {
			s.q.Lines[i].ProductID = &productID
			return nil
		}
	}
	return ErrLineNotFound
}

// Patch carries partial draft-level updates. As with LinePatch, numeric
// fields are raw form text normalized through parse-or-default.
type Patch struct {
	CustomerName    *string       `json:"customer_name,omitempty"`
	CompanyName     *string       `json:"company_name,omitempty"`
	Email           *string       `json:"email,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	Address         *string       `json:"address,omitempty"`
	GSTNumber       *string       `json:"gst_number,omitempty"`
	DiscountEnabled *bool         `json:"discount_enabled,omitempty"`
	DiscountType    *DiscountType `json:"discount_type,omitempty"`
	DiscountValue   *string       `json:"discount_value,omitempty"`
	TaxRate         *string       `json:"tax_rate,omitempty"`
	TaxInclusive    *bool         `json:"tax_inclusive,omitempty"`
	ChargeName      *string       `json:"charge_name,omitempty"`
	ChargeAmount    *string       `json:"charge_amount,omitempty"`
	FollowUpDate    *string       `json:"follow_up_date,omitempty"`
	SendImmediately *bool         `json:"send_immediately,omitempty"`
}

// ApplyPatch merges a partial update into the draft. Editing any customer
// field by hand clears the persisted customer id: the customer is treated
// as new unless re-selected from search.
func (s *Store) ApplyPatch(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customerEdited := false
	setIf := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			customerEdited = true
		}
	}
	setIf(&s.q.Customer.Name, p.CustomerName)
	setIf(&s.q.Customer.CompanyName, p.CompanyName)
	setIf(&s.q.Customer.Email, p.Email)
	setIf(&s.q.Customer.Phone, p.Phone)
	setIf(&s.q.Customer.Address, p.Address)
	setIf(&s.q.Customer.GSTNumber, p.GSTNumber)
	if customerEdited {
		s.q.Customer.ID = nil
	}

	if p.DiscountEnabled != nil {
		s.q.Discount.Enabled = *p.DiscountEnabled
	}
	if p.DiscountType != nil {
		s.q.Discount.Type = *p.DiscountType
	}
	if p.DiscountValue != nil {
		s.q.Discount.Value = shared.ParseFloatOrZero(*p.DiscountValue)
	}
	if p.TaxRate != nil {
		s.q.Tax.RatePercent = shared.ParseFloatOrZero(*p.TaxRate)
	}
	if p.TaxInclusive != nil {
		s.q.Tax.Inclusive = *p.TaxInclusive
	}
	if p.ChargeName != nil {
		s.q.AdditionalCharge.Name = *p.ChargeName
	}
	if p.ChargeAmount != nil {
		s.q.AdditionalCharge.Amount = shared.ParseFloatOrZero(*p.ChargeAmount)
	}
	if p.FollowUpDate != nil {
		s.q.FollowUpDate = *p.FollowUpDate
	}
	if p.SendImmediately != nil {
		s.q.SendImmediately = *p.SendImmediately
	}
	s.recompute()
}

// SelectCustomer merges a picked customer candidate into the draft.
func (s *Store) SelectCustomer(c Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Customer = c
	s.recompute()
}

// SelectCompany sets only the company name from a company search pick.
func (s *Store) SelectCompany(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Customer.CompanyName = name
}

// AttachLead links the draft to a lead and fills the customer fields from
// the lead's customer. While a lead is attached the customer block is
// lead-derived rather than independently entered.
func (s *Store) AttachLead(leadID int64, c Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.LeadID = &leadID
	s.q.Customer = c
	s.recompute()
}

// DetachLead removes the lead association, leaving customer fields as-is.
func (s *Store) DetachLead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.LeadID = nil
}

// ToggleTerm adds the term to the selection, or removes it when already
// selected. Selection order is preserved for display; duplicates never enter.
func (s *Store) ToggleTerm(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.q.Terms {
		if t == id {
			s.q.Terms = append(s.q.Terms[:i], s.q.Terms[i+1:]...)
			return
		}
	}
	s.q.Terms = append(s.q.Terms, id)
}
