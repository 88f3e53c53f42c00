package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/scope"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	handleKey
)

// requireCaller rejects requests without a caller id.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := strings.TrimSpace(r.Header.Get(CallerHeader))
		if caller == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
				Kind:    "unauthorized",
				Message: "missing " + CallerHeader + " header",
			}})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	})
}

func callerFrom(ctx context.Context) string {
	c, _ := ctx.Value(callerKey).(string)
	return c
}

// resolveLedger turns the entity and ledger path parameters into a handle
// once per request.
func (s *Server) resolveLedger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, err := s.resolver.Resolve(r.Context(), callerFrom(r.Context()),
			chi.URLParam(r, "entityID"), chi.URLParam(r, "ledger"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), handleKey, h)))
	})
}

func handleFrom(ctx context.Context) scope.Handle {
	h, _ := ctx.Value(handleKey).(scope.Handle)
	return h
}

// accessLog logs each request and records its metrics under the matched
// route pattern.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
