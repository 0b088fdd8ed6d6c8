// Package scoring computes the placeholder compatibility score shown on applications.
package scoring

import "unicode/utf16"

const modulus = 1_000_000_007

// Compatibility folds jobID+jobSeekerID into a score in [0, 100]. Each UTF-16
// code unit is mixed in with h = (h*31 + c) mod 1e9+7, so stored scores stay
// reproducible across deployments.
func Compatibility(jobID, jobSeekerID string) int {
	var h int64
	for _, c := range utf16.Encode([]rune(jobID + jobSeekerID)) {
		h = (h*31 + int64(c)) % modulus
	}
	return int(h % 101)
}
