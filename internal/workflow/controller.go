// Package workflow drives a draft through validation, product resolution
// and submission against the remote quotation API.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/shared"
	"github.com/quotedesk/quotedesk/internal/upstream"
	"github.com/quotedesk/quotedesk/internal/validation"
)

// State is the controller's position in the submission lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateResolvingProducts State = "resolving_products"
	StateSubmitting        State = "submitting"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// ErrSubmissionInProgress is returned when Submit is called re-entrantly.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// QuotationAPI is the slice of the upstream client the controller needs.
type QuotationAPI interface {
	CreateProduct(ctx context.Context, name string, sellingPrice float64) (upstream.Product, error)
	CreateQuotation(ctx context.Context, p upstream.QuotationPayload) (upstream.QuotationData, error)
	UpdateQuotation(ctx context.Context, id int64, p upstream.QuotationPayload) (upstream.QuotationData, error)
}

// Result reports the outcome of a submission attempt.
type Result struct {
	State       State                  `json:"state"`
	FieldErrors validation.FieldErrors `json:"field_errors,omitempty"`
	QuotationID int64                  `json:"quotation_id,omitempty"`
	// PDFURL is set only for send-immediately submissions; plain draft
	// saves surface no artifact.
	PDFURL string `json:"pdf_url,omitempty"`
}

// Controller runs the submission state machine for one draft store. The
// mode was fixed when the draft was opened; the controller reads it from
// the store and never re-derives it.
type Controller struct {
	logger *slog.Logger
	store  *draft.Store
	engine *validation.Engine
	api    QuotationAPI

	mu    sync.Mutex
	state State
	busy  bool
}

// NewController constructs a controller around a draft store.
func NewController(logger *slog.Logger, store *draft.Store, engine *validation.Engine, api QuotationAPI) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger: logger,
		store:  store,
		engine: engine,
		api:    api,
		state:  StateIdle,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Debug("workflow transition", slog.String("state", string(s)))
}

// Submit runs the full pipeline: validate, resolve unsaved products, build
// the payload and issue the create or update call. A validation failure or
// a negative total blocks before any network mutation. Any failure leaves
// the draft untouched for retry.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Result{State: c.state}, ErrSubmissionInProgress
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	c.transition(StateValidating)
	snapshot := c.store.Snapshot()

	fieldErrs, err := c.engine.ValidateDraft(snapshot)
	if err != nil {
		c.transition(StateFailed)
		return Result{State: StateFailed, FieldErrors: fieldErrs}, err
	}
	if c.store.Totals().Total < 0 {
		c.transition(StateFailed)
		return Result{State: StateFailed}, shared.ErrNegativeTotal
	}

	c.transition(StateResolvingProducts)
	if err := c.resolveProducts(ctx, snapshot); err != nil {
		c.transition(StateFailed)
		return Result{State: StateFailed}, fmt.Errorf("%w: %v", shared.ErrProductResolution, err)
	}

	c.transition(StateSubmitting)
	snapshot = c.store.Snapshot()
	payload, err := BuildPayload(snapshot)
	if err != nil {
		c.transition(StateFailed)
		return Result{State: StateFailed}, err
	}

	var data upstream.QuotationData
	if snapshot.Mode == draft.ModeEdit && snapshot.ExistingID != nil {
		data, err = c.api.UpdateQuotation(ctx, *snapshot.ExistingID, payload)
	} else {
		// Duplicate mode still creates a new record.
		data, err = c.api.CreateQuotation(ctx, payload)
	}
	if err != nil {
		c.transition(StateFailed)
		return Result{State: StateFailed}, fmt.Errorf("%w: %v", shared.ErrSubmission, err)
	}

	c.transition(StateSucceeded)
	if snapshot.Mode == draft.ModeCreate {
		c.store.Reset()
	}

	result := Result{State: StateSucceeded, QuotationID: data.ID}
	if snapshot.SendImmediately {
		result.PDFURL = data.PDFURL
	}
	c.logger.Info("quotation submitted",
		slog.Int64("id", data.ID),
		slog.String("mode", string(snapshot.Mode)),
		slog.Bool("send_immediately", snapshot.SendImmediately))
	return result, nil
}

// resolveProducts creates a product record for every line without a
// persisted product reference. The creations run concurrently but the ids
// commit to the store only after all of them succeed; a single failure
// aborts the whole submission.
func (c *Controller) resolveProducts(ctx context.Context, snapshot draft.Quotation) error {
	type resolved struct {
		lineID    uuid.UUID
		productID int64
	}

	var (
		mu  sync.Mutex
		ids []resolved
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, li := range snapshot.Lines {
		if li.Persisted() {
			continue
		}
		li := li
		g.Go(func() error {
			p, err := c.api.CreateProduct(ctx, li.Name, li.UnitPrice)
			if err != nil {
				return fmt.Errorf("create product %q: %w", li.Name, err)
			}
			mu.Lock()
			ids = append(ids, resolved{lineID: li.ID, productID: p.ID})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range ids {
		if err := c.store.SetProductID(r.lineID, r.productID); err != nil {
			return err
		}
	}
	return nil
}
