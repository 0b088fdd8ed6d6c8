package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"apply-to-job",
		"list-applications",
		"get-seeker-stats",
		"calculate-compatibility",
		"list-notifications",
		"mark-notification-read",
		"deliver-notification",
	}, reg.TaskTypes())

	apply, ok := reg.Find("apply-to-job")
	require.True(t, ok)
	assert.False(t, apply.GuestSafe)
	assert.Contains(t, apply.ErrorCodes, "JOB_NOT_FOUND")

	_, ok = reg.Find("auth-logout")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"version":"2","activities":[{"taskType":"a"},{"taskType":"b"}]}`), 0o600))
	reg, err := LoadRegistry(valid)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)
	assert.Len(t, reg.Activities, 2)

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"duplicate", `{"activities":[{"taskType":"a"},{"taskType":"a"}]}`, "duplicate task type"},
		{"missing task type", `{"activities":[{"displayName":"x"}]}`, "no task type"},
		{"malformed", `{"activities":`, "parse activity registry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := LoadRegistry(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err = LoadRegistry(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
