// internal/workers/notification/deliver-notification/models.go
package delivernotification

import "jobboard-workers/internal/models"

type Input struct {
	NotificationID string `json:"notificationId"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type template struct {
	subject string
	body    string
	sms     bool
}

var templates = map[string]template{
	models.NotificationApplied: {
		subject: "Application received",
		body:    "Hi {{name}},\n\n{{message}}. We'll let you know when the employer responds.",
	},
	models.NotificationSeen: {
		subject: "Your application was viewed",
		body:    "Hi {{name}},\n\n{{message}}.",
	},
	models.NotificationAccepted: {
		subject: "Good news about your application",
		body:    "Hi {{name}},\n\n{{message}}.",
		sms:     true,
	},
	models.NotificationRejected: {
		subject: "Update on your application",
		body:    "Hi {{name}},\n\n{{message}}.",
		sms:     true,
	},
}

const inputSchema = `{
	"type": "object",
	"required": ["notificationId"],
	"properties": {
		"notificationId": {"type": "string", "minLength": 1}
	}
}`
