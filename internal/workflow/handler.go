package workflow

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/shared"
	"github.com/quotedesk/quotedesk/internal/validation"
)

// SessionSource looks up open draft sessions.
type SessionSource interface {
	Get(id string) (*draft.Session, bool)
}

// Handler wires the submission endpoints. Controllers are cached per
// session so the in-progress guard holds across concurrent requests.
type Handler struct {
	logger   *slog.Logger
	sessions SessionSource
	engine   *validation.Engine
	api      QuotationAPI

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, sessions SessionSource, engine *validation.Engine, api QuotationAPI) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		sessions:    sessions,
		engine:      engine,
		api:         api,
		controllers: make(map[string]*Controller),
	}
}

// DropController releases the cached controller for a closed session.
// Wired as the session registry's close hook.
func (h *Handler) DropController(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.controllers, id)
}

func (h *Handler) controllerFor(id string, sess *draft.Session) *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.controllers[id]
	if !ok {
		c = NewController(h.logger, sess.Store, h.engine, h.api)
		h.controllers[id] = c
	}
	return c
}

// MountRoutes registers the workflow endpoints on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/drafts/{session}/submit", h.Submit)
	r.Post("/drafts/{session}/validate/{field}", h.ValidateField)
}

type submitError struct {
	Error       string                 `json:"error"`
	FieldErrors validation.FieldErrors `json:"field_errors,omitempty"`
}

// Submit runs the submission pipeline for a draft session. Each blocking
// condition maps to its own message; the terms rule and the negative-total
// warning are surfaced distinctly from generic field errors.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	sess, ok := h.sessions.Get(id)
	if !ok {
		h.mu.Lock()
		delete(h.controllers, id)
		h.mu.Unlock()
		shared.WriteError(w, http.StatusNotFound, "draft session not found")
		return
	}

	controller := h.controllerFor(id, sess)
	result, err := controller.Submit(r.Context())
	if err == nil {
		shared.WriteJSON(w, http.StatusOK, result)
		return
	}

	switch {
	case errors.Is(err, shared.ErrNoTermsSelected):
		shared.WriteJSON(w, http.StatusUnprocessableEntity, submitError{
			Error:       shared.ErrNoTermsSelected.Error(),
			FieldErrors: result.FieldErrors,
		})
	case errors.Is(err, shared.ErrValidation):
		shared.WriteJSON(w, http.StatusUnprocessableEntity, submitError{
			Error:       "please fix the highlighted fields",
			FieldErrors: result.FieldErrors,
		})
	case errors.Is(err, shared.ErrNegativeTotal):
		shared.WriteJSON(w, http.StatusUnprocessableEntity, submitError{
			Error: "the discount exceeds the subtotal; the total would be negative",
		})
	case errors.Is(err, ErrSubmissionInProgress):
		shared.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("submission failed", slog.Any("error", err))
		shared.WriteError(w, http.StatusBadGateway, "submission failed, your draft is unchanged")
	}
}

// ValidateField checks a single customer field, for on-blur validation.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "session"))
	if !ok {
		shared.WriteError(w, http.StatusNotFound, "draft session not found")
		return
	}
	field := chi.URLParam(r, "field")
	errs := h.engine.ValidateField(sess.Store.Snapshot().Customer, field)
	shared.WriteJSON(w, http.StatusOK, map[string]any{"field_errors": errs})
}
