package query

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/logger"
)

// statsTopic mirrors the pipeline's publish topic; kept unexported and
// duplicated rather than imported, since importing the pipeline package
// here to share one string would introduce a query->pipeline dependency
// the router doesn't otherwise need.
const statsTopic = "stats"

// handleStatsStream serves GET /api/v1/stats/stream: a websocket that
// relays every tick's batch as it's published on the hub, for as long as
// the connection stays open. There is no subscription/channel protocol
// here (unlike the teacher's multi-event-type handler) since this stream
// only ever carries one kind of message.
func (s *Service) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	if !s.config.HTTPServer.WebSocketEnabled {
		http.Error(w, "websocket streaming is disabled", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.hub.Sub(statsTopic)
	defer s.hub.Unsub(ch, statsTopic)

	logger.Debug("stats stream connected from %s", r.RemoteAddr)
	for msg := range ch {
		entries, ok := msg.([]cgroup.StatsEntry)
		if !ok {
			continue
		}
		payload, err := json.Marshal(entries)
		if err != nil {
			logger.Warn("failed to marshal stats stream payload: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug("stats stream connection closed: %v", err)
			return
		}
	}
}
