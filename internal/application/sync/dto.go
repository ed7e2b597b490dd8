package sync

import (
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// IntegrationResult is the per-integration outcome reported by one run
type IntegrationResult struct {
	IntegrationID string                 `json:"integration_id"`
	Name          string                 `json:"name"`
	Status        integration.SyncStatus `json:"status"`
	Message       string                 `json:"message"`
	Stats         *integration.SyncStats `json:"stats,omitempty"`
}

// RunSummary is the itemized outcome of one orchestrator run
type RunSummary struct {
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Results    []IntegrationResult `json:"results"`
}

// Counts tallies the result statuses for log and response summaries
func (s *RunSummary) Counts() (success, failed, skipped int) {
	for _, r := range s.Results {
		switch r.Status {
		case integration.SyncStatusSuccess:
			success++
		case integration.SyncStatusError:
			failed++
		case integration.SyncStatusSkipped:
			skipped++
		}
	}
	return success, failed, skipped
}
