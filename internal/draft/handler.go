package draft

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quotedesk/quotedesk/internal/shared"
	"github.com/quotedesk/quotedesk/internal/upstream"
)

// QuotationFetcher fetches an existing quotation to seed edit and
// duplicate drafts.
type QuotationFetcher interface {
	GetQuotation(ctx context.Context, id int64) (upstream.QuotationData, error)
}

// Handler wires the drafting HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	fetcher  QuotationFetcher
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, fetcher QuotationFetcher) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, registry: registry, fetcher: fetcher}
}

type openDraftRequest struct {
	Mode       Mode   `json:"mode"`
	ExistingID *int64 `json:"existing_id,omitempty"`
}

type draftView struct {
	SessionID string    `json:"session_id"`
	Draft     Quotation `json:"draft"`
	Totals    Totals    `json:"totals"`
}

func (h *Handler) view(sess *Session) draftView {
	return draftView{
		SessionID: sess.ID,
		Draft:     sess.Store.Snapshot(),
		Totals:    sess.Store.Totals().Rounded(),
	}
}

// Open creates a draft session. Mode comes from the caller that knows which
// route the user entered through; the drafting core never infers it. When
// an existing id is given, the draft seeds from the fetched quotation.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req openDraftRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Mode {
	case ModeCreate, ModeEdit, ModeDuplicate:
	case "":
		req.Mode = ModeCreate
	default:
		shared.WriteError(w, http.StatusBadRequest, "unknown mode")
		return
	}
	if req.Mode != ModeCreate && req.ExistingID == nil {
		shared.WriteError(w, http.StatusBadRequest, "existing_id required for edit and duplicate")
		return
	}

	sess := h.registry.Open(req.Mode)
	if req.ExistingID != nil {
		data, err := h.fetcher.GetQuotation(r.Context(), *req.ExistingID)
		if err != nil {
			h.logger.Error("seed draft failed", slog.Int64("id", *req.ExistingID), slog.Any("error", err))
			h.registry.Close(sess.ID)
			shared.WriteError(w, http.StatusBadGateway, "failed to load quotation")
			return
		}
		sess.Store.Seed(SeedFromUpstream(data))
	}

	shared.WriteJSON(w, http.StatusCreated, h.view(sess))
}

// Show returns the draft and its derived totals.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// CloseSession discards the session.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.registry.Close(chi.URLParam(r, "session"))
	w.WriteHeader(http.StatusNoContent)
}

// Patch merges a partial draft update and returns the recomputed view.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var p Patch
	if err := shared.DecodeJSON(r, &p); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess.Store.ApplyPatch(p)
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// AddLine appends a blank line.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Store.AddLine()
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// UpdateLine merges a line patch.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	var p LinePatch
	if err := shared.DecodeJSON(r, &p); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := sess.Store.UpdateLine(lineID, p); err != nil {
		shared.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// RemoveLine deletes a line; the last line cannot be removed.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	if err := sess.Store.RemoveLine(lineID); err != nil {
		status := http.StatusNotFound
		if errors.Is(err, ErrLastLine) {
			status = http.StatusConflict
		}
		shared.WriteError(w, status, err.Error())
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// Totals returns the derived totals alone, rounded for display.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess.Store.Totals().Rounded())
}

// ToggleTerm selects or deselects a term.
func (h *Handler) ToggleTerm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	termID := int64(shared.ParseIntOrZero(chi.URLParam(r, "term")))
	if termID <= 0 {
		shared.WriteError(w, http.StatusBadRequest, "invalid term id")
		return
	}
	sess.Store.ToggleTerm(termID)
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// DetachLead removes the lead association.
func (h *Handler) DetachLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Store.DetachLead()
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

type queryRequest struct {
	Query string `json:"query"`
}

type selectRequest struct {
	Index int `json:"index"`
}

// FieldSearch feeds a keystroke to the customer, company or lead resolver.
func (h *Handler) FieldSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req queryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The fetch may outlive this request; detach it from the request
	// context so a superseded fetch dies by generation check, not by
	// cancellation.
	ctx := context.WithoutCancel(r.Context())
	switch chi.URLParam(r, "field") {
	case "customer":
		sess.Customers.SetQuery(ctx, req.Query)
		shared.WriteJSON(w, http.StatusOK, sess.Customers.State())
	case "company":
		sess.Companies.SetQuery(ctx, req.Query)
		shared.WriteJSON(w, http.StatusOK, sess.Companies.State())
	case "lead":
		sess.Leads.SetQuery(ctx, req.Query)
		shared.WriteJSON(w, http.StatusOK, sess.Leads.State())
	default:
		shared.WriteError(w, http.StatusNotFound, "unknown search field")
	}
}

// FieldSearchState returns the current resolver state for polling.
func (h *Handler) FieldSearchState(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "field") {
	case "customer":
		shared.WriteJSON(w, http.StatusOK, sess.Customers.State())
	case "company":
		shared.WriteJSON(w, http.StatusOK, sess.Companies.State())
	case "lead":
		shared.WriteJSON(w, http.StatusOK, sess.Leads.State())
	default:
		shared.WriteError(w, http.StatusNotFound, "unknown search field")
	}
}

// FieldBlur schedules the resolver's grace-period close.
func (h *Handler) FieldBlur(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "field") {
	case "customer":
		sess.Customers.Blur()
	case "company":
		sess.Companies.Blur()
	case "lead":
		sess.Leads.Blur()
	default:
		shared.WriteError(w, http.StatusNotFound, "unknown search field")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FieldSelect picks a search result and merges it into the draft.
func (h *Handler) FieldSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var picked bool
	switch chi.URLParam(r, "field") {
	case "customer":
		picked = sess.SelectCustomer(req.Index)
	case "company":
		picked = sess.SelectCompany(req.Index)
	case "lead":
		picked = sess.SelectLead(req.Index)
	default:
		shared.WriteError(w, http.StatusNotFound, "unknown search field")
		return
	}
	if !picked {
		shared.WriteError(w, http.StatusConflict, "no result at that index")
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

// LineSearch feeds a keystroke to a line's product resolver.
func (h *Handler) LineSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	if _, found := sess.Store.Snapshot().Line(lineID); !found {
		shared.WriteError(w, http.StatusNotFound, ErrLineNotFound.Error())
		return
	}
	var req queryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resolver := sess.Products.For(lineID)
	resolver.SetQuery(context.WithoutCancel(r.Context()), req.Query)
	shared.WriteJSON(w, http.StatusOK, resolver.State())
}

// LineSearchState returns a line's product resolver state.
func (h *Handler) LineSearchState(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess.Products.For(lineID).State())
}

// LineBlur schedules the grace-period close on a line's product resolver.
func (h *Handler) LineBlur(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	sess.Products.For(lineID).Blur()
	w.WriteHeader(http.StatusNoContent)
}

// LineSelect picks a product search result for a line.
func (h *Handler) LineSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !sess.SelectProduct(lineID, req.Index) {
		shared.WriteError(w, http.StatusConflict, "no result at that index")
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.view(sess))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := h.registry.Get(chi.URLParam(r, "session"))
	if !ok {
		shared.WriteError(w, http.StatusNotFound, "draft session not found")
		return nil, false
	}
	return sess, true
}

func (h *Handler) lineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "line"))
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid line id")
		return uuid.Nil, false
	}
	return id, true
}
