// internal/workers/application/apply-to-job/models.go
package applytojob

import (
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/models"
)

type Input struct {
	JobID  string            `json:"jobId"`
	Caller identity.Identity `json:"caller"`
}

type Output struct {
	Application    *models.Application `json:"application"`
	AlreadyApplied bool                `json:"alreadyApplied"`
}

// SubmittedMessage is published for newly created applications.
type SubmittedMessage struct {
	ApplicationID  string `json:"applicationId"`
	JobID          string `json:"jobId"`
	JobSeekerID    string `json:"jobSeekerId"`
	NotificationID string `json:"notificationId"`
}

const inputSchema = `{
	"type": "object",
	"required": ["jobId", "caller"],
	"properties": {
		"jobId": {"type": "string"},
		"caller": {
			"type": "object",
			"required": ["role"],
			"properties": {
				"jobSeekerId": {"type": "string"},
				"role": {"type": "string", "enum": ["jobseeker", "employer", "admin", "guest"]}
			}
		}
	}
}`
