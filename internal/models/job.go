package models

import "time"

// Job is the read-only summary of a posting used by the application workflow.
type Job struct {
	ID         string    `json:"id"`
	Position   string    `json:"position"`
	Company    string    `json:"company"`
	Location   string    `json:"location,omitempty"`
	EmployerID string    `json:"employerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
