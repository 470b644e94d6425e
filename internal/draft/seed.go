package draft

import (
	"github.com/quotedesk/quotedesk/internal/shared"
	"github.com/quotedesk/quotedesk/internal/upstream"
)

// SeedFromUpstream maps a fetched quotation onto draft state. The same
// fetched data seeds both edit and duplicate drafts; only the store's mode
// differs. Dates convert to display form here, at the boundary.
func SeedFromUpstream(data upstream.QuotationData) Quotation {
	lines := make([]LineItem, 0, len(data.Items))
	for _, it := range data.Items {
		product := it.Product
		lines = append(lines, LineItem{
			ProductID:       &product,
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			PercentDiscount: it.Discount,
			ImageURL:        it.ImageURL,
		})
	}

	discountType := DiscountType(data.DiscountType)
	if discountType == "" {
		discountType = DiscountPercentage
	}

	id := data.ID
	return Quotation{
		Customer: Customer{
			ID:          data.Customer.ID,
			Name:        data.Customer.Name,
			CompanyName: data.Customer.CompanyName,
			Email:       data.Customer.Email,
			Phone:       data.Customer.Phone,
			Address:     data.Customer.Address,
			GSTNumber:   data.Customer.GSTNo,
		},
		LeadID: data.LeadID,
		Terms:  append([]int64(nil), data.Terms...),
		Lines:  lines,
		Discount: DiscountConfig{
			Enabled: data.Discount > 0,
			Type:    discountType,
			Value:   data.Discount,
		},
		Tax: TaxConfig{
			RatePercent: data.TaxRate,
			Inclusive:   data.IsTaxInclusive,
		},
		AdditionalCharge: AdditionalCharge{
			Name:   data.ChargeName,
			Amount: data.ChargeAmount,
		},
		FollowUpDate: shared.ToDisplayDate(data.FollowUpDate),
		ExistingID:   &id,
		Status:       data.Status,
	}
}
