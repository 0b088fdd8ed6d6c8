// internal/workers/notification/list-notifications/models.go
package listnotifications

import (
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/models"
)

type Input struct {
	Caller identity.Identity `json:"caller"`
}

type Output struct {
	Notifications []*models.Notification `json:"notifications"`
}

const inputSchema = `{
	"type": "object",
	"required": ["caller"],
	"properties": {
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
