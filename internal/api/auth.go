package api

import (
	"crypto/subtle"
	"net/http"
)

// authenticate returns middleware that requires the Authorization header
// to match token exactly, compared in constant time. It guards only the
// R2N route; N2R is intentionally left open per the wire contract.
func authenticate(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
