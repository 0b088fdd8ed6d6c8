// internal/workers/application/get-seeker-stats/models.go
package getseekerstats

import (
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/models"
)

type Input struct {
	Caller identity.Identity `json:"caller"`
}

type Output struct {
	models.SeekerStats
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
