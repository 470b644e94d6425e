package workflow

import (
	"fmt"

	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/shared"
	"github.com/quotedesk/quotedesk/internal/upstream"
)

// BuildPayload maps a fully resolved draft onto the wire shape of the
// create/update calls. Every line must carry a persisted product id by the
// time this runs. The follow-up date converts from display form to API form
// here, at the boundary.
func BuildPayload(q draft.Quotation) (upstream.QuotationPayload, error) {
	items := make([]upstream.ItemPayload, 0, len(q.Lines))
	for _, li := range q.Lines {
		if !li.Persisted() {
			return upstream.QuotationPayload{}, fmt.Errorf("line %q has no persisted product", li.Name)
		}
		items = append(items, upstream.ItemPayload{
			Product:   *li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Discount:  li.PercentDiscount,
		})
	}

	var discountValue float64
	if q.Discount.Enabled {
		discountValue = q.Discount.Value
	}

	return upstream.QuotationPayload{
		Customer: upstream.CustomerPayload{
			ID:          q.Customer.ID,
			Name:        q.Customer.Name,
			CompanyName: q.Customer.CompanyName,
			Email:       q.Customer.Email,
			Phone:       q.Customer.Phone,
			Address:     q.Customer.Address,
			GSTNo:       q.Customer.GSTNumber,
		},
		Items:                  items,
		Discount:               discountValue,
		DiscountType:           string(q.Discount.Type),
		TaxRate:                q.Tax.RatePercent,
		Terms:                  append([]int64(nil), q.Terms...),
		FollowUpDate:           shared.ToAPIDate(q.FollowUpDate),
		LeadID:                 q.LeadID,
		AdditionalChargeName:   q.AdditionalCharge.Name,
		AdditionalChargeAmount: q.AdditionalCharge.Amount,
		IsTaxInclusive:         q.Tax.Inclusive,
		SendImmediately:        q.SendImmediately,
	}, nil
}
