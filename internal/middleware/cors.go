package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type, " + HeaderCorrelationID
)

// corsExposeHeaders lists the response headers browser clients read: the
// catalog pagination headers and the correlation id.
var corsExposeHeaders = strings.Join([]string{
	"X-Total-Count", "X-Total-Pages", "X-Page", HeaderCorrelationID,
}, ", ")

// CORS allows the storefront front end to call the API from the listed
// origins. A single "*" allows any origin.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed := corsOrigin(r.Header.Get("Origin"), allowOrigins, allowAll)
			if allowed != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}

			// preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed != "" {
					w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsOrigin returns the origin to echo back, or "" when it is not allowed.
func corsOrigin(origin string, allow []string, allowAll bool) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return ""
	}
	if allowAll {
		return origin
	}
	for _, a := range allow {
		if strings.EqualFold(strings.TrimSpace(a), origin) {
			return origin
		}
	}
	return ""
}
