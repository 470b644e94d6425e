package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// CatalogRefresher re-snapshots the upstream catalog collections.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// NewCatalogRefreshHandler builds the handler for catalog refresh tasks.
func NewCatalogRefreshHandler(refresher CatalogRefresher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CatalogRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := refresher.Refresh(ctx); err != nil {
			logger.Warn("catalog refresh", slog.Any("error", err))
			return err
		}
		logger.Info("catalog refreshed", slog.Bool("force", payload.Force))
		return nil
	}
}
