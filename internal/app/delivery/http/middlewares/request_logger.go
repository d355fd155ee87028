package middlewares

import (
	"context"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestLogger assigns every request an id, echoes it back in the
// X-Request-ID header and logs one line per request after it completes.
func (m *Middlewares) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constvars.HeaderXRequestID)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		w.Header().Set(constvars.HeaderXRequestID, requestID)

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_REQUEST_ID_KEY, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: constvars.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r.WithContext(ctx))

		m.Log.Info("request completed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMethodKey, r.Method),
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			zap.Int(constvars.LoggingStatusCodeKey, recorder.status),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
		)
	})
}
