package api

import (
	"net/http"
)

// handleMetrics returns bridge counters, registry aggregates, and WebSocket
// client count for basic monitoring.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	stats := s.registry.GetStats()

	metrics := map[string]any{
		"registry": map[string]any{
			"total_devices": stats.TotalDevices,
			"online":        stats.Online,
		},
		"websocket_clients": s.hub.ClientCount(),
		"version":           s.version,
	}

	if s.bridge != nil {
		m := s.bridge.GetMetrics()
		metrics["bridge"] = map[string]any{
			"connected":        m.Connected,
			"messages_rx":      m.MessagesRx,
			"messages_dropped": m.MessagesDropped,
			"commands_tx":      m.CommandsTx,
			"devices_managed":  m.DevicesManaged,
		}
	} else {
		metrics["bridge"] = map[string]any{"connected": false}
	}

	writeJSON(w, http.StatusOK, metrics)
}
