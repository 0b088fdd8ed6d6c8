package validation

import "github.com/google/uuid"

// IsUUID reports whether s is a UUID in canonical 8-4-4-4-12 form. The urn
// and braced forms uuid.Parse also accepts are rejected.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
