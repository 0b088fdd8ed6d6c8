// internal/models/application.go
package models

import "time"

// Application statuses. Only StatusApplied is written by this service; the
// others are set by the employer review flow.
const (
	StatusApplied  = "applied"
	StatusViewed   = "viewed"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Application is one job seeker's application to one job.
type Application struct {
	ID                 string    `json:"id"`
	JobID              string    `json:"jobId"`
	JobSeekerID        string    `json:"jobSeekerId"`
	Status             string    `json:"status"`
	CompatibilityScore int       `json:"compatibilityScore"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Job is the expanded job reference; nil when the job no longer exists.
	Job *Job `json:"job"`
}
