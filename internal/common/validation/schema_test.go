package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["jobId", "caller"],
	"properties": {
		"jobId": {"type": "string"},
		"caller": {
			"type": "object",
			"required": ["role"],
			"properties": {
				"role": {"type": "string", "enum": ["jobseeker", "guest"]}
			}
		}
	}
}`

func TestValidateVariables(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name       string
		document   string
		valid      bool
		errorField string
	}{
		{"valid", `{"jobId": "j-1", "caller": {"role": "guest"}}`, true, ""},
		{"missing job", `{"caller": {"role": "guest"}}`, false, "(root)"},
		{"bad role", `{"jobId": "j-1", "caller": {"role": "owner"}}`, false, "caller"},
		{"wrong type", `{"jobId": 7, "caller": {"role": "guest"}}`, false, "jobId"},
		{"not json", `{`, false, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateVariables(tt.document)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.GetErrorMessages())
				assert.True(t, result.HasErrors(tt.errorField), "errors: %v", result.Errors)
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	require.Error(t, err)

	assert.Panics(t, func() { MustCompile(`not a schema`) })
}

func TestHasErrors_NestedField(t *testing.T) {
	result := &ValidationResult{Errors: []ValidationError{{Field: "caller.role", Message: "bad"}}}

	assert.True(t, result.HasErrors("caller"))
	assert.True(t, result.HasErrors("caller.role"))
	assert.False(t, result.HasErrors("call"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ada@example.com"))
	assert.True(t, ValidateEmail("first.last+jobs@mail.example.org"))
	assert.False(t, ValidateEmail("ada@"))
	assert.False(t, ValidateEmail("ada.example.com"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1 (555) 123-4567"))
	assert.True(t, ValidatePhone("5551234567"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("call me"))
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"7c9e6679-7425-40de-944b-e07fc1f90ae7", true},
		{"7C9E6679-7425-40DE-944B-E07FC1F90AE7", true},
		{"urn:uuid:7c9e6679-7425-40de-944b-e07fc1f90ae7", false},
		{"{7c9e6679-7425-40de-944b-e07fc1f90ae7}", false},
		{"7c9e6679742540de944be07fc1f90ae7", false},
		{"7c9e6679-7425-40de-944b-e07fc1f90aeg", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUUID(tt.id))
		})
	}
}
