package upstream

import "context"

// Customer is a customer record as served by the remote API.
type Customer struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CompanyName    string `json:"company_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PrimaryAddress string `json:"primary_address"`
	GSTNo          string `json:"gst_no"`
}

// LeadCustomer is the customer block embedded in a lead.
type LeadCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Lead is a sales lead record.
type Lead struct {
	ID              int64        `json:"id"`
	LeadNumber      string       `json:"lead_number"`
	QuotationNumber string       `json:"quotation_number"`
	Status          string       `json:"status"`
	Customer        LeadCustomer `json:"customer"`
}

// Product is a catalog product record.
type Product struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	SellingPrice   float64  `json:"selling_price"`
	CostPrice      float64  `json:"cost_price"`
	TaxRate        float64  `json:"tax_rate"`
	Unit           string   `json:"unit"`
	Brand          string   `json:"brand"`
	Weight         float64  `json:"weight"`
	WarrantyMonths int      `json:"warranty_months"`
	Images         []string `json:"images"`
}

// FirstImage returns the product's first image URL, or the empty string.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Term is a terms-and-conditions record. ContentHTML is a "*"-delimited
// point list.
type Term struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
}

// The collections have no server-side filter contract: each list call
// returns the full set and callers filter client-side.

// ListCustomers fetches the unfiltered customer collection.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.getJSON(ctx, "/customers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLeads fetches the unfiltered lead collection.
func (c *Client) ListLeads(ctx context.Context) ([]Lead, error) {
	var out []Lead
	if err := c.getJSON(ctx, "/leads", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts fetches the unfiltered product collection.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getJSON(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTerms fetches the unfiltered terms collection.
func (c *Client) ListTerms(ctx context.Context) ([]Term, error) {
	var out []Term
	if err := c.getJSON(ctx, "/terms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct persists a free-text line item as a product record.
// Only name and selling price are known at draft time.
func (c *Client) CreateProduct(ctx context.Context, name string, sellingPrice float64) (Product, error) {
	in := map[string]any{
		"name":          name,
		"selling_price": sellingPrice,
	}
	var out Product
	if err := c.sendJSON(ctx, "POST", "/products", in, &out); err != nil {
		return Product{}, err
	}
	return out, nil
}
