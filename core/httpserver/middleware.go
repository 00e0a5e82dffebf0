package httpserver

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jummai/wabot/core/logger"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestLogging tags every request with a fresh request ID and logs one
// completion line with method, path, status and duration.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRID(r.Context(), logger.NewRID())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := "ok"
		if rec.status >= 500 {
			status = "fail"
		}
		logger.Debug(ctx, "http", "request.done",
			slog.String("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("code", rec.status),
			slog.Duration("took", logger.RoundMS(time.Since(start))),
		)
	})
}

// Recover catches panics that escape the handlers and answers 500. It is
// the outer safety net; the webhook has its own recovery so it can still
// attempt an apology reply.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(r.Context(), "http", "request.panic",
					slog.String("status", "fail"),
					slog.Any("err", rec),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
