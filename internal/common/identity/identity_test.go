package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_IsJobSeeker(t *testing.T) {
	validID := uuid.NewString()

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"job seeker with uuid", JobSeeker(validID), true},
		{"guest", Guest(), false},
		{"guest carrying a well-formed id", Identity{JobSeekerID: validID, Role: RoleGuest}, false},
		{"job seeker with malformed id", JobSeeker("not-an-id"), false},
		{"job seeker with empty id", JobSeeker(""), false},
		{"job seeker with urn id", JobSeeker("urn:uuid:" + validID), false},
		{"job seeker with braced id", JobSeeker("{" + validID + "}"), false},
		{"employer", Identity{JobSeekerID: validID, Role: RoleEmployer}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.IsJobSeeker())
		})
	}
}

func TestResolver_IssueAndResolve(t *testing.T) {
	r := NewResolver("test-secret")
	userID := uuid.NewString()

	token, err := r.Issue(userID, RoleJobSeeker, time.Hour)
	require.NoError(t, err)

	got := r.Resolve(token)
	assert.Equal(t, JobSeeker(userID), got)
	assert.True(t, got.IsJobSeeker())
}

func TestResolver_Resolve_DegradesToGuest(t *testing.T) {
	r := NewResolver("test-secret")
	userID := uuid.NewString()

	expired, err := r.Issue(userID, RoleJobSeeker, -time.Minute)
	require.NoError(t, err)

	foreign, err := NewResolver("other-secret").Issue(userID, RoleJobSeeker, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID, Role: RoleJobSeeker})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"expired":      expired,
		"wrong secret": foreign,
		"alg none":     unsigned,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			got := r.Resolve(token)
			assert.Equal(t, Guest(), got)
			assert.False(t, got.IsJobSeeker())
		})
	}
}

func TestResolver_Resolve_EmployerHasNoSeekerID(t *testing.T) {
	r := NewResolver("test-secret")

	token, err := r.Issue(uuid.NewString(), RoleEmployer, time.Hour)
	require.NoError(t, err)

	got := r.Resolve(token)
	assert.Equal(t, RoleEmployer, got.Role)
	assert.Empty(t, got.JobSeekerID)
	assert.False(t, got.IsJobSeeker())
}
