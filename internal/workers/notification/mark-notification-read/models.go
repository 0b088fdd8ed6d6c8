// internal/workers/notification/mark-notification-read/models.go
package marknotificationread

import (
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/models"
)

type Input struct {
	NotificationID string            `json:"notificationId"`
	Caller         identity.Identity `json:"caller"`
}

type Output struct {
	Notification *models.Notification `json:"notification"`
}

const inputSchema = `{
	"type": "object",
	"required": ["notificationId", "caller"],
	"properties": {
		"notificationId": {"type": "string"},
		"caller": {
			"type": "object",
			"required": ["role"],
			"properties": {
				"jobSeekerId": {"type": "string"},
				"role": {"type": "string"}
			}
		}
	}
}`
