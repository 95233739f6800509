package gateway

import (
	"net/http"
	"slices"
	"strings"
)

// AllowOrigins returns a WebSocket origin check for the given list. "*"
// allows every origin, and so does a request without an Origin header.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.ContainsFunc(origins, func(o string) bool {
			return strings.EqualFold(o, origin)
		})
	}
}
