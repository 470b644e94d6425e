package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/search"
	"github.com/quotedesk/quotedesk/internal/upstream"
)

type stubDirectory struct {
	customers []upstream.Customer
	leads     []upstream.Lead
	products  []upstream.Product
}

func (d *stubDirectory) Customers(ctx context.Context) ([]upstream.Customer, error) {
	return d.customers, nil
}

func (d *stubDirectory) Leads(ctx context.Context) ([]upstream.Lead, error) {
	return d.leads, nil
}

func (d *stubDirectory) Products(ctx context.Context) ([]upstream.Product, error) {
	return d.products, nil
}

func testDirectory() *stubDirectory {
	return &stubDirectory{
		customers: []upstream.Customer{
			{ID: 1, Name: "Asha", CompanyName: "Asha Pvt Ltd", Phone: "9876543210", PrimaryAddress: "Pune", GSTNo: "27AAAAA0000A1Z5"},
			{ID: 2, Name: "Ravi", CompanyName: "Ravi Traders", Phone: "9812345678"},
		},
		leads: []upstream.Lead{
			{ID: 10, LeadNumber: "LD-10", Customer: upstream.LeadCustomer{Name: "Asha", Phone: "9876543210", Email: "asha@example.com"}},
			{ID: 11, LeadNumber: "LD-11", Customer: upstream.LeadCustomer{Name: "Ravi", Phone: "9812345678"}},
		},
		products: []upstream.Product{
			{ID: 20, Name: "Water Pump", SellingPrice: 950, Images: []string{"img/pump.png"}},
			{ID: 21, Name: "Pressure Valve", SellingPrice: 120},
		},
	}
}

func newTestSession(t *testing.T, mode Mode) *Session {
	t.Helper()
	return NewSession(mode, testDirectory(), search.Options{
		Debounce:  2 * time.Millisecond,
		BlurGrace: 2 * time.Millisecond,
	})
}

func waitResults[T any](t *testing.T, r *search.Resolver[T], n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.State().Results) == n }, 2*time.Second, time.Millisecond)
}

func TestSessionSelectCustomerMergesAllFields(t *testing.T) {
	sess := newTestSession(t, ModeCreate)
	sess.Customers.SetQuery(context.Background(), "ash")
	waitResults(t, sess.Customers, 1)

	require.True(t, sess.SelectCustomer(0))
	c := sess.Store.Snapshot().Customer
	require.NotNil(t, c.ID)
	assert.Equal(t, int64(1), *c.ID)
	assert.Equal(t, "Asha Pvt Ltd", c.CompanyName)
	assert.Equal(t, "Pune", c.Address)
	assert.Equal(t, "27AAAAA0000A1Z5", c.GSTNumber)
	assert.Empty(t, sess.Customers.State().Query)
}

func TestSessionSelectCompanyMergesNameOnly(t *testing.T) {
	sess := newTestSession(t, ModeCreate)
	sess.Companies.SetQuery(context.Background(), "traders")
	waitResults(t, sess.Companies, 1)

	require.True(t, sess.SelectCompany(0))
	c := sess.Store.Snapshot().Customer
	assert.Equal(t, "Ravi Traders", c.CompanyName)
	assert.Empty(t, c.Name, "company pick must not touch other customer fields")
	assert.Nil(t, c.ID)
}

func TestSessionLeadFilterByCustomerNameEquality(t *testing.T) {
	sess := newTestSession(t, ModeCreate)
	sess.Store.ApplyPatch(Patch{CustomerName: strp("Asha")})

	sess.Leads.SetQuery(context.Background(), "ld")
	waitResults(t, sess.Leads, 1)
	assert.Equal(t, "LD-10", sess.Leads.State().Results[0].LeadNumber)

	require.True(t, sess.SelectLead(0))
	q := sess.Store.Snapshot()
	require.NotNil(t, q.LeadID)
	assert.Equal(t, int64(10), *q.LeadID)
	assert.Equal(t, "asha@example.com", q.Customer.Email)
}

func TestSessionSelectProductFillsLine(t *testing.T) {
	sess := newTestSession(t, ModeCreate)
	lineID := sess.Store.Snapshot().Lines[0].ID

	sess.Products.For(lineID).SetQuery(context.Background(), "pump")
	waitResults(t, sess.Products.For(lineID), 1)

	require.True(t, sess.SelectProduct(lineID, 0))
	li, ok := sess.Store.Snapshot().Line(lineID)
	require.True(t, ok)
	require.True(t, li.Persisted())
	assert.Equal(t, int64(20), *li.ProductID)
	assert.Equal(t, 950.0, li.UnitPrice)
	assert.Equal(t, "img/pump.png", li.ImageURL)
}

func TestSessionRemovingLineDropsItsResolverOnly(t *testing.T) {
	sess := newTestSession(t, ModeCreate)
	first := sess.Store.Snapshot().Lines[0]
	second := sess.Store.AddLine()

	sess.Products.For(first.ID).SetQuery(context.Background(), "valve")
	sess.Products.For(second.ID).SetQuery(context.Background(), "pump")
	waitResults(t, sess.Products.For(second.ID), 1)

	require.NoError(t, sess.Store.RemoveLine(first.ID))
	assert.False(t, sess.Products.Has(first.ID))
	assert.True(t, sess.Products.Has(second.ID))
	assert.Equal(t, "pump", sess.Products.For(second.ID).State().Query)
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(testDirectory(), search.Options{Debounce: time.Millisecond})

	sess := reg.Open(ModeCreate)
	require.NotEmpty(t, sess.ID)

	got, ok := reg.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, reg.Len())

	reg.Close(sess.ID)
	_, ok = reg.Get(sess.ID)
	assert.False(t, ok)
}
