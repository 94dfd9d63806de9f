package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"mess-backend/internal/config"
)

// NewCORS only matters for the JSON endpoints and the Razorpay checkout
// callback. With no configured origins the handler is a pass-through.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	if len(cfg.Server.CorsAllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	methods := cfg.Server.CorsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
