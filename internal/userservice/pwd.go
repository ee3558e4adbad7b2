package userservice

import "crypto/subtle"

// passwordMatches compares the stored credential with the submitted one.
// The resource API keeps credentials as given, so this is plain equality
// in constant time.
func passwordMatches(stored, given string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
