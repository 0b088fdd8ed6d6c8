// internal/models/notification.go
package models

import (
	"fmt"
	"time"
)

// Notification types.
const (
	NotificationApplied  = "applied"
	NotificationSeen     = "seen"
	NotificationAccepted = "accepted"
	NotificationRejected = "rejected"
)

// FeedLimit caps the deduplicated notification feed.
const FeedLimit = 50

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AppliedMessage is the inbox text written when an application is created.
func AppliedMessage(job *Job) string {
	return fmt.Sprintf("You applied for %s at %s", job.Position, job.Company)
}
