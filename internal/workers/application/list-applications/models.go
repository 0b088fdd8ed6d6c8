// internal/workers/application/list-applications/models.go
package listapplications

import (
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/models"
)

type Input struct {
	Caller identity.Identity `json:"caller"`
}

type Output struct {
	Applications []*models.Application `json:"applications"`
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
