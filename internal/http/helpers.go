package http

import (
	"net/http"
	"strings"
)

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *JSONResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *JSONResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
