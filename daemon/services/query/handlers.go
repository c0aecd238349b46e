package query

import (
	"net/http"
	"strconv"

	"github.com/domalab/cgtrace/daemon/dto"
)

const defaultStatsLimit = 50
const maxStatsLimit = 1000

// statsResponse is the JSON shape /api/v1/stats returns: each row from
// persistence.StatsRow, re-keyed for the wire rather than exposing the
// storage layer's column-oriented nullable-pointer shape directly.
type statsResponse struct {
	TimestampSecs int64   `json:"timestamp_secs"`
	ContainerID   string  `json:"container_id"`
	CPUUsageUsec  *uint64 `json:"cpu_usage_usec,omitempty"`
	CPUUserUsec   *uint64 `json:"cpu_user_usec,omitempty"`
	CPUSystemUsec *uint64 `json:"cpu_system_usec,omitempty"`
	MemoryUsage   *uint64 `json:"memory_usage_bytes,omitempty"`
	MemoryLimit   *uint64 `json:"memory_limit_bytes,omitempty"`
	IORbytes      *uint64 `json:"io_rbytes,omitempty"`
	IOWbytes      *uint64 `json:"io_wbytes,omitempty"`
	NetRxBytes    *uint64 `json:"net_rx_bytes,omitempty"`
	NetTxBytes    *uint64 `json:"net_tx_bytes,omitempty"`
}

// handleStats serves GET /api/v1/stats?container_id=&limit=.
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	containerID := r.URL.Query().Get("container_id")
	limit := parseLimit(r.URL.Query().Get("limit"))

	rows, err := s.store.QueryStats(r.Context(), containerID, limit)
	if err != nil {
		s.writeAPIError(w, dto.ErrInternal.WithCause(err))
		return
	}

	out := make([]statsResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, statsResponse{
			TimestampSecs: row.TimestampSecs,
			ContainerID:   row.ContainerID,
			CPUUsageUsec:  row.CPUUsageUsec,
			CPUUserUsec:   row.CPUUserUsec,
			CPUSystemUsec: row.CPUSystemUsec,
			MemoryUsage:   row.MemoryUsageBytes,
			MemoryLimit:   row.MemoryLimitBytes,
			IORbytes:      row.IORbytes,
			IOWbytes:      row.IOWbytes,
			NetRxBytes:    row.NetRxBytes,
			NetTxBytes:    row.NetTxBytes,
		})
	}

	s.writeJSON(w, http.StatusOK, dto.StandardResponse{
		Data:       out,
		Pagination: dto.CalculatePagination(len(out), &dto.PaginationParams{Limit: limit}),
	})
}

// containerResponse is the JSON shape for one /api/v1/containers entry.
type containerResponse struct {
	ContainerID string            `json:"container_id"`
	Hostname    string            `json:"hostname"`
	Labels      map[string]string `json:"labels"`
}

// handleContainers serves GET /api/v1/containers.
func (s *Service) handleContainers(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.QueryContainers(r.Context())
	if err != nil {
		s.writeAPIError(w, dto.ErrInternal.WithCause(err))
		return
	}

	out := make([]containerResponse, 0, len(summaries))
	for _, c := range summaries {
		out = append(out, containerResponse{ContainerID: c.ContainerID, Hostname: c.Hostname, Labels: c.Labels})
	}

	s.writeJSON(w, http.StatusOK, dto.StandardResponse{Data: out})
}

// handleHealth serves GET /healthz — no auth, since it's a liveness probe.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultStatsLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultStatsLimit
	}
	if n > maxStatsLimit {
		return maxStatsLimit
	}
	return n
}
