package middlewares

import (
	"crypto/subtle"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"labbridge-service/internal/pkg/utils"
	"net/http"
)

// APIKeyAuth guards the order endpoints. Callers are other backend services
// (the dashboard, the intake pipeline), so a single shared key is enough.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(constvars.HeaderXAPIKey)

		if apiKey == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingAPIKey())
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(m.InternalConfig.App.APIKey)) != 1 {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey())
			return
		}

		next.ServeHTTP(w, r)
	})
}
