package upstream

import (
	"context"
	"fmt"
	"net/http"
)

// CustomerPayload is the customer object on a quotation submission. A zero
// ID tells the remote API to create the customer alongside the quotation.
type CustomerPayload struct {
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"primary_address"`
	GSTNo       string `json:"gst_no"`
}

// ItemPayload is one line on a quotation submission. Product must be a
// persisted product id; free-text lines are resolved before submission.
type ItemPayload struct {
	Product   int64   `json:"product"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
}

// QuotationPayload is the full draft payload for create and update calls.
// FollowUpDate is in API form (YYYY-MM-DD).
type QuotationPayload struct {
	Customer               CustomerPayload `json:"customer"`
	Items                  []ItemPayload   `json:"items"`
	Discount               float64         `json:"discount"`
	DiscountType           string          `json:"discount_type"`
	TaxRate                float64         `json:"tax_rate"`
	Terms                  []int64         `json:"terms"`
	FollowUpDate           string          `json:"follow_up_date,omitempty"`
	LeadID                 *int64          `json:"lead_id,omitempty"`
	AdditionalChargeName   string          `json:"additional_charge_name,omitempty"`
	AdditionalChargeAmount float64         `json:"additional_charge_amount"`
	IsTaxInclusive         bool            `json:"is_tax_inclusive"`
	SendImmediately        bool            `json:"send_immediately"`
}

// QuotationData is the inner payload of a quotation response.
type QuotationData struct {
	ID              int64            `json:"id"`
	QuotationNumber string           `json:"quotation_number"`
	Status          string           `json:"status"`
	PDFURL          string           `json:"pdf_url"`
	FollowUpDate    string           `json:"follow_up_date"`
	Customer        CustomerPayload  `json:"customer"`
	Items           []QuotationItem  `json:"items"`
	Discount        float64          `json:"discount"`
	DiscountType    string           `json:"discount_type"`
	TaxRate         float64          `json:"tax_rate"`
	Terms           []int64          `json:"terms"`
	LeadID          *int64           `json:"lead_id"`
	ChargeName      string           `json:"additional_charge_name"`
	ChargeAmount    float64          `json:"additional_charge_amount"`
	IsTaxInclusive  bool             `json:"is_tax_inclusive"`
}

// QuotationItem is one persisted line on a fetched quotation.
type QuotationItem struct {
	Product   int64   `json:"product"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
	ImageURL  string  `json:"image_url"`
}

// QuotationResult is the envelope returned by create and update calls.
type QuotationResult struct {
	Data QuotationData `json:"data"`
}

// GetQuotation fetches an existing quotation, used to seed edit and
// duplicate drafts.
func (c *Client) GetQuotation(ctx context.Context, id int64) (QuotationData, error) {
	var out QuotationResult
	if err := c.getJSON(ctx, fmt.Sprintf("/quotations/%d", id), &out); err != nil {
		return QuotationData{}, err
	}
	return out.Data, nil
}

// CreateQuotation issues the POST used by both create and duplicate modes;
// a duplicate still creates a new record.
func (c *Client) CreateQuotation(ctx context.Context, p QuotationPayload) (QuotationData, error) {
	var out QuotationResult
	if err := c.sendJSON(ctx, http.MethodPost, "/quotations", p, &out); err != nil {
		return QuotationData{}, err
	}
	return out.Data, nil
}

// UpdateQuotation issues the PUT used by edit mode.
func (c *Client) UpdateQuotation(ctx context.Context, id int64, p QuotationPayload) (QuotationData, error) {
	var out QuotationResult
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/quotations/%d", id), p, &out); err != nil {
		return QuotationData{}, err
	}
	return out.Data, nil
}
