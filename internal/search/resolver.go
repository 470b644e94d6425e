// Package search implements debounced remote-search-then-select over the
// upstream collections. The collections have no server-side filter, so a
// resolver fetches the full set and filters client-side on the active query.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDebounce delays the fetch behind rapid typing.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultBlurGrace keeps the result list open just long enough for a
	// pointer-down selection to land before a blur closes it.
	DefaultBlurGrace = 200 * time.Millisecond
)

// State is a snapshot of one resolver.
type State[T any] struct {
	Query   string `json:"query"`
	Results []T    `json:"results"`
	Loading bool   `json:"loading"`
	Open    bool   `json:"open"`
}

// Fetcher retrieves the full candidate collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// MatchFunc reports whether a candidate matches the query.
type MatchFunc[T any] func(item T, query string) bool

// Options tunes a resolver. Zero values fall back to the defaults.
type Options struct {
	Debounce  time.Duration
	BlurGrace time.Duration
	Logger    *slog.Logger
}

// Resolver owns the search state for one call site. Superseded in-flight
// fetches are not cancelled; their results are compared against the current
// request generation at resolution time and silently dropped when stale.
type Resolver[T any] struct {
	mu        sync.Mutex
	state     State[T]
	gen       uint64
	timer     *time.Timer
	debounce  time.Duration
	blurGrace time.Duration
	fetch     Fetcher[T]
	match     MatchFunc[T]
	logger    *slog.Logger
}

// NewResolver constructs a resolver over the given collection fetcher.
func NewResolver[T any](fetch Fetcher[T], match MatchFunc[T], opts Options) *Resolver[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BlurGrace <= 0 {
		opts.BlurGrace = DefaultBlurGrace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver[T]{
		debounce:  opts.Debounce,
		blurGrace: opts.BlurGrace,
		fetch:     fetch,
		match:     match,
		logger:    opts.Logger,
	}
}

// SetQuery records the query immediately, opens the result list for
// non-empty input, and schedules a debounced fetch. Every call advances the
// request generation, which invalidates any fetch still in flight.
func (r *Resolver[T]) SetQuery(ctx context.Context, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	gen := r.gen
	r.state.Query = query
	r.state.Open = query != ""
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if query == "" {
		r.state.Results = nil
		r.state.Loading = false
		return
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		r.run(ctx, gen, query)
	})
}

func (r *Resolver[T]) run(ctx context.Context, gen uint64, query string) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.state.Loading = true
	r.mu.Unlock()

	items, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// A newer query superseded this fetch; drop the late result.
		return
	}
	r.state.Loading = false
	if err != nil {
		// Search failures are non-fatal: empty results, no error surfaced.
		r.logger.Debug("search fetch failed", slog.Any("error", err))
		r.state.Results = nil
		return
	}
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if r.match(it, query) {
			filtered = append(filtered, it)
		}
	}
	r.state.Results = filtered
}

// State returns a snapshot of the resolver.
func (r *Resolver[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state
	st.Results = append([]T(nil), r.state.Results...)
	return st
}

// Select picks the candidate at index, closes the list and clears the
// query. The caller merges the returned candidate into the draft.
func (r *Resolver[T]) Select(index int) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if index < 0 || index >= len(r.state.Results) {
		return zero, false
	}
	picked := r.state.Results[index]
	r.gen++
	r.state = State[T]{}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return picked, true
}

// Blur schedules a delayed close. The grace period lets a pointer-down
// selection inside the result list complete first, and a query typed during
// the grace period keeps the list open.
func (r *Resolver[T]) Blur() {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()
	time.AfterFunc(r.blurGrace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if gen == r.gen {
			r.state.Open = false
		}
	})
}

// Close closes the result list immediately.
func (r *Resolver[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Open = false
}

// FoldContains reports whether s contains q, case-insensitively. The common
// match function for name-ish fields.
func FoldContains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(q)))
}
