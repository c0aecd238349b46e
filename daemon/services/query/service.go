// Package query is the read-only HTTP surface over the persisted stats:
// GET /api/v1/stats, GET /api/v1/containers, GET /healthz, GET /metrics,
// and an optional GET /api/v1/stats/stream websocket live tail.
//
// Grounded on the teacher's (now-removed, see DESIGN.md) daemon/services/api
// route/middleware conventions and daemon/dto/{response.go,errors.go}.
package query

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cskr/pubsub"
	"github.com/gorilla/websocket"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/dto"
	"github.com/domalab/cgtrace/daemon/logger"
	"github.com/domalab/cgtrace/daemon/services/persistence"
)

// Service holds everything the HTTP handlers need: the store to read from,
// the resolved config (HTTP/auth settings), and the hub the websocket
// handler tails for live updates.
type Service struct {
	store    *persistence.Store
	config   domain.Config
	hub      *pubsub.PubSub
	upgrader websocket.Upgrader
}

// New builds a Service bound to appCtx's config and hub.
func New(appCtx *domain.Context, store *persistence.Store) *Service {
	return &Service{
		store:  store,
		config: appCtx.Config,
		hub:    appCtx.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// contextKey namespaces values this package stores on a request context,
// avoiding collisions with other packages doing the same.
type contextKey string

const userContextKey contextKey = "query.user"

func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON response: %v", err)
	}
}

func (s *Service) writeAPIError(w http.ResponseWriter, err *dto.APIError) {
	s.writeJSON(w, err.HTTPStatus, err)
}

// responseWriter wraps http.ResponseWriter to capture the status code for
// loggingMiddleware, the same shape the teacher's http_server.go uses.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.LightBlue("HTTP %s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

func (s *Service) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
