package httpadapter

import (
	"crypto/subtle"
	"strings"
)

// isAuthorizedBearerHeader reports whether header carries "Bearer <want>".
// An empty want authorizes nothing.
func isAuthorizedBearerHeader(header, want string) bool {
	if want == "" {
		return false
	}
	token, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(want)) == 1
}
