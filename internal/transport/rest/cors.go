package rest

import (
	"net/http"
	"strings"
	"sync/atomic"

	"createform/internal/config"
)

// CORS applies the configured CORS headers. Settings can be swapped at runtime.
type CORS struct {
	cfg atomic.Pointer[config.CORSConfig]
}

// NewCORS creates the CORS middleware
func NewCORS(cfg config.CORSConfig) *CORS {
	c := &CORS{}
	c.Update(cfg)
	return c
}

// Update replaces the CORS settings
func (c *CORS) Update(cfg config.CORSConfig) {
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}
	if cfg.AllowedMethods == "" {
		cfg.AllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	if cfg.AllowedHeaders == "" {
		cfg.AllowedHeaders = "Content-Type, Authorization"
	}
	c.cfg.Store(&cfg)
}

// Middleware sets the CORS headers and answers preflight requests
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := c.cfg.Load()

		if origin := allowedOrigin(cfg.AllowedOrigins, r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin returns the Access-Control-Allow-Origin value for a request origin
func allowedOrigin(allowed, origin string) string {
	if allowed == "*" {
		return "*"
	}
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" && o == origin {
			return origin
		}
	}
	return ""
}
