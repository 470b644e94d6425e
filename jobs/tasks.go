package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogRefresh re-snapshots the upstream collections into the
	// catalog cache so search stays warm.
	TaskCatalogRefresh = "catalog:refresh"
)

// CatalogRefreshPayload contains options for the refresh job.
type CatalogRefreshPayload struct {
	Force bool `json:"force"`
}

// NewCatalogRefreshTask builds a catalog refresh task.
func NewCatalogRefreshTask(force bool) (*asynq.Task, error) {
	body, err := json.Marshal(CatalogRefreshPayload{Force: force})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, body, asynq.Queue(QueueDefault)), nil
}
