// internal/workers/application/calculate-compatibility/models.go
package calculatecompatibility

type Input struct {
	JobID       string `json:"jobId"`
	JobSeekerID string `json:"jobSeekerId"`
}

type Output struct {
	CompatibilityScore int `json:"compatibilityScore"`
}

const inputSchema = `{
	"type": "object",
	"required": ["jobId", "jobSeekerId"],
	"properties": {
		"jobId": {"type": "string"},
		"jobSeekerId": {"type": "string"}
	}
}`
