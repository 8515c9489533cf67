package httpx

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/missionctl/leadrun-engine/config"
)

// CorrelationIDHeader carries the request correlation id end to end.
const CorrelationIDHeader = "X-Correlation-Id"

type correlationIDKey struct{}

// CorrelationID returns a middleware that reads the correlation id header or
// generates one, stores it on the request context, and echoes it back on the
// response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := strings.TrimSpace(r.Header.Get(CorrelationIDHeader))
			if cid == "" {
				cid = uuid.NewString()
			}
			w.Header().Set(CorrelationIDHeader, cid)
			ctx := context.WithValue(r.Context(), correlationIDKey{}, cid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CorrelationIDFromContext returns the request correlation id, or "" when the
// middleware did not run.
func CorrelationIDFromContext(ctx context.Context) string {
	if cid, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return cid
	}
	return ""
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.String("correlation_id", CorrelationIDFromContext(r.Context())),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey returns a middleware that checks the bearer token on owner
// endpoints and requires the caller identity headers. A blank configured key
// disables the check but the identity headers stay mandatory.
func RequireAPIKey(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Enabled() && !bearerMatches(r, cfg.APIKey) {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("missing or invalid api key"),
				})
				return
			}

			id, ok := identityFromHeaders(r)
			if !ok {
				WriteError(w, ErrorParams{
					Code:    http.StatusBadRequest,
					ErrCode: "identity_required",
					Err:     errors.New("X-Org-ID and X-User-ID headers are required"),
				})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerMatches(r *http.Request, apiKey string) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(apiKey)) == 1
}

// Identity names the calling org and user on owner endpoints.
type Identity struct {
	OrgID  string
	UserID string
}

type identityKey struct{}

func identityFromHeaders(r *http.Request) (Identity, bool) {
	id := Identity{
		OrgID:  strings.TrimSpace(r.Header.Get("X-Org-ID")),
		UserID: strings.TrimSpace(r.Header.Get("X-User-ID")),
	}
	if id.OrgID == "" || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// IdentityFromContext returns the caller identity set by RequireAPIKey.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
