// Package identity resolves the caller of an operation from a session token.
package identity

import (
	"fmt"
	"time"

	"jobboard-workers/internal/common/validation"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
	RoleGuest     Role = "guest"
)

// Identity is the resolved caller. It is passed explicitly to every operation.
type Identity struct {
	JobSeekerID string `json:"jobSeekerId,omitempty"`
	Role        Role   `json:"role"`
}

// Guest is the identity of an anonymous or unverifiable caller.
func Guest() Identity {
	return Identity{Role: RoleGuest}
}

// JobSeeker returns an authenticated job seeker identity.
func JobSeeker(id string) Identity {
	return Identity{JobSeekerID: id, Role: RoleJobSeeker}
}

// IsJobSeeker reports whether the identity carries a usable job seeker id.
// A guest id is never trusted, even when it is well-formed.
func (i Identity) IsJobSeeker() bool {
	if i.Role != RoleJobSeeker {
		return false
	}
	return validation.IsUUID(i.JobSeekerID)
}

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Resolver issues and verifies HS256 session tokens.
type Resolver struct {
	secret []byte
	now    func() time.Time
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for userID valid for ttl.
func (r *Resolver) Issue(userID string, role Role, ttl time.Duration) (string, error) {
	now := r.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies token and returns the caller. Missing, malformed, expired
// or tampered tokens resolve to Guest; resolution itself never fails.
func (r *Resolver) Resolve(token string) Identity {
	if token == "" {
		return Guest()
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(r.now))
	if err != nil || !parsed.Valid {
		return Guest()
	}

	if claims.Role != RoleJobSeeker {
		// Employers and admins carry no job seeker id for this workflow.
		return Identity{Role: claims.Role}
	}
	return JobSeeker(claims.UserID)
}
