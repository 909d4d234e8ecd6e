package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/warp/budget-ledger/ledger"
	"github.com/warp/budget-ledger/logger"
)

// =============================================================================
// LOGGING / RECOVERY
// =============================================================================

// requestLogger logs one line per request and puts a request-scoped logger
// in the context.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

// recoverer turns a panic into a 500 result.
func recoverer(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error().
						Interface("error", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")
					writeJSON(w, http.StatusInternalServerError, Result{Error: "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// IDENTITY - Who is calling
// =============================================================================

// Identity resolves the authenticated user of a request. Authentication
// itself happens upstream (reverse proxy, session layer).
type Identity interface {
	UserID(r *http.Request) (ledger.UserID, bool)
}

// HeaderIdentity trusts a request header set by the upstream auth layer.
type HeaderIdentity struct {
	Header string
}

func (h HeaderIdentity) UserID(r *http.Request) (ledger.UserID, bool) {
	v := r.Header.Get(h.Header)
	if v == "" {
		return "", false
	}
	return ledger.UserID(v), true
}

type userKey struct{}

// requireUser rejects anonymous requests and stores the user in the context.
func requireUser(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := id.UserID(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, Result{Error: "You must be logged in"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
		})
	}
}

func userFrom(ctx context.Context) ledger.UserID {
	id, _ := ctx.Value(userKey{}).(ledger.UserID)
	return id
}
