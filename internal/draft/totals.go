package draft

import "github.com/quotedesk/quotedesk/internal/shared"

// Totals are the derived monetary figures for a draft. Values are kept at
// full float precision; Rounded produces the presentation form.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// Rounded returns the totals rounded to two decimal places.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       shared.Round2(t.Subtotal),
		DiscountAmount: shared.Round2(t.DiscountAmount),
		Tax:            shared.Round2(t.Tax),
		Total:          shared.Round2(t.Total),
	}
}

// LineTotal computes the discounted total for one line. A per-line discount
// above 100% clamps the line to zero rather than going negative.
func LineTotal(li LineItem) float64 {
	base := float64(li.Quantity) * li.UnitPrice
	if li.PercentDiscount > 0 {
		base -= base * li.PercentDiscount / 100
	}
	if base < 0 {
		return 0
	}
	return base
}

// ComputeTotals derives subtotal, global discount amount, tax and total.
// The evaluation order is fixed: line totals, subtotal, global discount,
// additional charge, then tax. The global discount amount is deliberately
// not clamped; a discount larger than the subtotal drives the total
// negative and the workflow refuses to submit such a draft.
func ComputeTotals(lines []LineItem, discount DiscountConfig, tax TaxConfig, charge AdditionalCharge) Totals {
	var subtotal float64
	for _, li := range lines {
		subtotal += LineTotal(li)
	}

	var discountAmount float64
	if discount.Enabled {
		switch discount.Type {
		case DiscountPercentage:
			discountAmount = subtotal * discount.Value / 100
		default:
			discountAmount = discount.Value
		}
	}

	adjusted := subtotal - discountAmount + charge.Amount

	var taxAmount float64
	total := adjusted
	if !tax.Inclusive {
		taxAmount = adjusted * tax.RatePercent / 100
		total = adjusted + taxAmount
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Tax:            taxAmount,
		Total:          total,
	}
}
