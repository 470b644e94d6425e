// Package catalog keeps redis snapshots of the upstream collections. The
// search resolvers re-fetch whole collections on every debounced query, so
// a short-lived snapshot absorbs most of that traffic at the edge.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quotedesk/quotedesk/internal/upstream"
)

const (
	keyCustomers = "quotedesk:catalog:customers"
	keyLeads     = "quotedesk:catalog:leads"
	keyProducts  = "quotedesk:catalog:products"
	keyTerms     = "quotedesk:catalog:terms"
)

// Source is the slice of the upstream client the cache reads through to.
type Source interface {
	ListCustomers(ctx context.Context) ([]upstream.Customer, error)
	ListLeads(ctx context.Context) ([]upstream.Lead, error)
	ListProducts(ctx context.Context) ([]upstream.Product, error)
	ListTerms(ctx context.Context) ([]upstream.Term, error)
}

// Cache is a read-through snapshot cache. Redis trouble never surfaces to
// callers; reads fall through to the upstream and writes are best-effort.
type Cache struct {
	rdb    *redis.Client
	source Source
	ttl    time.Duration
	logger *slog.Logger
}

// New constructs a Cache with the given snapshot TTL.
func New(rdb *redis.Client, source Source, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{rdb: rdb, source: source, ttl: ttl, logger: logger}
}

func readThrough[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached []T
		if uerr := json.Unmarshal(payload, &cached); uerr == nil {
			return cached, nil
		}
		c.logger.Warn("corrupt catalog snapshot", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog snapshot read failed", slog.String("key", key), slog.Any("error", err))
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, items)
	return items, nil
}

func (c *Cache) store(ctx context.Context, key string, items any) {
	payload, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("marshal catalog snapshot", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("store catalog snapshot", slog.String("key", key), slog.Any("error", err))
	}
}

// Customers returns the customer collection, from snapshot when warm.
func (c *Cache) Customers(ctx context.Context) ([]upstream.Customer, error) {
	return readThrough(ctx, c, keyCustomers, c.source.ListCustomers)
}

// Leads returns the lead collection, from snapshot when warm.
func (c *Cache) Leads(ctx context.Context) ([]upstream.Lead, error) {
	return readThrough(ctx, c, keyLeads, c.source.ListLeads)
}

// Products returns the product collection, from snapshot when warm.
func (c *Cache) Products(ctx context.Context) ([]upstream.Product, error) {
	return readThrough(ctx, c, keyProducts, c.source.ListProducts)
}

// Terms returns the terms collection, from snapshot when warm.
func (c *Cache) Terms(ctx context.Context) ([]upstream.Term, error) {
	return readThrough(ctx, c, keyTerms, c.source.ListTerms)
}

// Refresh re-snapshots all four collections unconditionally. Used by the
// background warm job.
func (c *Cache) Refresh(ctx context.Context) error {
	customers, err := c.source.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("refresh customers: %w", err)
	}
	leads, err := c.source.ListLeads(ctx)
	if err != nil {
		return fmt.Errorf("refresh leads: %w", err)
	}
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh products: %w", err)
	}
	terms, err := c.source.ListTerms(ctx)
	if err != nil {
		return fmt.Errorf("refresh terms: %w", err)
	}

	c.store(ctx, keyCustomers, customers)
	c.store(ctx, keyLeads, leads)
	c.store(ctx, keyProducts, products)
	c.store(ctx, keyTerms, terms)
	return nil
}
