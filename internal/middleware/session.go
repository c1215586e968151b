// Package middleware provides HTTP middleware for the Atelier API.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atelier-cms/atelier/internal/service"
)

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":            true,
	"/api/v1/":           true,
	"/api/v1/auth/login": true,
}

// publicMedia reports whether the request serves a stored image. Published
// pages embed these anonymously; section content reads require a session
// like saves do.
func publicMedia(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/media/")
}

// Session returns middleware that requires a live admin session on every
// content route, reads included. Expired and missing sessions both answer
// 401 so the editor can distinguish auth failures from save failures.
func Session(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || publicMedia(r) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "authorization required")
				return
			}
			if err := auth.Validate(token); err != nil {
				unauthorized(w, "session expired")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
