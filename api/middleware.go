package api

import (
	"net/http"
	"time"

	"sjsage522/productscraper/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request and stores a request scoped logger
// in the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		log := logger.ForAPI().WithField("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(log.IntoContext(r.Context()))

		next.ServeHTTP(ww, r)

		event := log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}
