package draft

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quotedesk/quotedesk/internal/search"
	"github.com/quotedesk/quotedesk/internal/upstream"
)

// Directory serves the candidate collections the resolvers search over.
// Backed by the catalog cache in production.
type Directory interface {
	Customers(ctx context.Context) ([]upstream.Customer, error)
	Leads(ctx context.Context) ([]upstream.Lead, error)
	Products(ctx context.Context) ([]upstream.Product, error)
}

// Session is one open draft: the store plus its search resolvers. The
// customer, company and lead resolvers are singletons; product resolvers
// are created per line and keyed by the line's stable id.
type Session struct {
	ID        string
	Store     *Store
	Customers *search.Resolver[upstream.Customer]
	Companies *search.Resolver[upstream.Customer]
	Leads     *search.Resolver[upstream.Lead]
	Products  *search.Set[upstream.Product]
}

// NewSession opens a draft session in the given mode.
func NewSession(mode Mode, dir Directory, opts search.Options) *Session {
	store := NewStore(mode)

	customers := search.NewResolver(dir.Customers, func(c upstream.Customer, q string) bool {
		return search.FoldContains(c.Name, q)
	}, opts)

	// Company search runs over the same customer collection, matching on
	// the company name field only.
	companies := search.NewResolver(dir.Customers, func(c upstream.Customer, q string) bool {
		return c.CompanyName != "" && search.FoldContains(c.CompanyName, q)
	}, opts)

	// Leads filter by customer-name equality when the draft already names
	// a customer, then by free text across the lead fields.
	leads := search.NewResolver(dir.Leads, func(l upstream.Lead, q string) bool {
		if name := store.Snapshot().Customer.Name; name != "" && l.Customer.Name != name {
			return false
		}
		haystack := strings.Join([]string{l.LeadNumber, l.QuotationNumber, l.Customer.Name, l.Customer.Phone}, " ")
		return search.FoldContains(haystack, q)
	}, opts)

	products := search.NewSet(func() *search.Resolver[upstream.Product] {
		return search.NewResolver(dir.Products, func(p upstream.Product, q string) bool {
			return search.FoldContains(p.Name, q)
		}, opts)
	})
	store.OnRemoveLine(products.Drop)

	return &Session{
		ID:        uuid.NewString(),
		Store:     store,
		Customers: customers,
		Companies: companies,
		Leads:     leads,
		Products:  products,
	}
}

// SelectCustomer picks a customer search result and merges it into the draft.
func (s *Session) SelectCustomer(index int) bool {
	c, ok := s.Customers.Select(index)
	if !ok {
		return false
	}
	s.Store.SelectCustomer(customerFromUpstream(c))
	return true
}

// SelectCompany picks a company search result; only the company name merges.
func (s *Session) SelectCompany(index int) bool {
	c, ok := s.Companies.Select(index)
	if !ok {
		return false
	}
	s.Store.SelectCompany(c.CompanyName)
	return true
}

// SelectLead picks a lead search result, attaching the lead and filling the
// customer block from the lead's customer.
func (s *Session) SelectLead(index int) bool {
	l, ok := s.Leads.Select(index)
	if !ok {
		return false
	}
	s.Store.AttachLead(l.ID, Customer{
		Name:  l.Customer.Name,
		Phone: l.Customer.Phone,
		Email: l.Customer.Email,
	})
	return true
}

// SelectProduct picks a product search result for the given line.
func (s *Session) SelectProduct(lineID uuid.UUID, index int) bool {
	p, ok := s.Products.For(lineID).Select(index)
	if !ok {
		return false
	}
	return s.Store.SelectProduct(lineID, p.ID, p.Name, p.SellingPrice, p.FirstImage()) == nil
}

func customerFromUpstream(c upstream.Customer) Customer {
	id := c.ID
	return Customer{
		ID:          &id,
		Name:        c.Name,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.PrimaryAddress,
		GSTNumber:   c.GSTNo,
	}
}

// Registry tracks the open draft sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	dir      Directory
	opts     search.Options
	onClose  func(id string)
}

// NewRegistry constructs a Registry building sessions over the directory.
func NewRegistry(dir Directory, opts search.Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		dir:      dir,
		opts:     opts,
	}
}

// Open creates and registers a new session.
func (r *Registry) Open(mode Mode) *Session {
	sess := NewSession(mode, r.dir, r.opts)
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// OnClose registers a callback fired after a session is discarded, so
// collaborators holding per-session state can release it.
func (r *Registry) OnClose(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClose = fn
}

// Close discards a session.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	fn := r.onClose
	r.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
