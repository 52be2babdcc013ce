package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sengled-bridge/internal/entity"
)

// entityResponse is the JSON shape for a live entity.
type entityResponse struct {
	MAC          string            `json:"mac"`
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	Capabilities []string          `json:"capabilities"`
	Available    bool              `json:"available"`
	On           bool              `json:"on"`
	State        map[string]string `json:"state"`
}

func toEntityResponse(e entity.Entity) entityResponse {
	caps := make([]string, 0, len(e.Capabilities()))
	for _, c := range e.Capabilities() {
		caps = append(caps, string(c))
	}
	return entityResponse{
		MAC:          e.MAC(),
		Name:         e.Name(),
		Kind:         string(e.Kind()),
		Capabilities: caps,
		Available:    e.Available(),
		On:           e.IsOn(),
		State:        e.State(),
	}
}

// handleListEntities returns every live entity with its current state.
func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	all := s.entities.All()

	entities := make([]entityResponse, 0, len(all))
	for _, e := range all {
		entities = append(entities, toEntityResponse(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleGetEntity returns a single entity by MAC address.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	e, err := s.entities.Get(mac)
	if err != nil {
		writeNotFound(w, "entity not found: "+mac)
		return
	}

	writeJSON(w, http.StatusOK, toEntityResponse(e))
}
