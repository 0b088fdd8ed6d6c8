// Package jobs looks up the job summaries referenced by applications.
package jobs

import (
	"context"
	"errors"

	"jobboard-workers/internal/common/validation"
	"jobboard-workers/internal/models"
)

var ErrJobNotFound = errors.New("JOB_NOT_FOUND")

// Directory is a read-only view of job postings.
type Directory interface {
	// Get returns ErrJobNotFound when no job has the id.
	Get(ctx context.Context, id string) (*models.Job, error)
	// GetMany returns the jobs that exist, keyed by id. Missing ids are absent
	// from the map, not an error.
	GetMany(ctx context.Context, ids []string) (map[string]*models.Job, error)
}

// validIDs drops malformed and repeated ids, keeping order.
func validIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !validation.IsUUID(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isValidID(id string) bool {
	return validation.IsUUID(id)
}
