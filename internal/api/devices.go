package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/sengled-bridge/internal/addon"
	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/entity"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
)

// deviceResponse is the JSON shape for a registry descriptor.
type deviceResponse struct {
	MAC             string            `json:"mac"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Model           string            `json:"model,omitempty"`
	FirmwareVersion string            `json:"firmware_version,omitempty"`
	Capabilities    []string          `json:"capabilities"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Online          bool              `json:"online"`
	RSSI            int               `json:"rssi,omitempty"`
	LastSeen        *time.Time        `json:"last_seen,omitempty"`
}

func toDeviceResponse(d *device.Descriptor) deviceResponse {
	caps := make([]string, len(d.Capabilities))
	for i, c := range d.Capabilities {
		caps[i] = string(c)
	}
	return deviceResponse{
		MAC:             d.MAC,
		Name:            d.Name,
		Type:            string(d.Type),
		Model:           d.Model,
		FirmwareVersion: d.FirmwareVersion,
		Capabilities:    caps,
		Attributes:      d.Attributes,
		Online:          d.Online,
		RSSI:            d.RSSI,
		LastSeen:        d.LastSeen,
	}
}

// handleListDevices returns every registered device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	descriptors := s.registry.List()

	devices := make([]deviceResponse, 0, len(descriptors))
	for i := range descriptors {
		devices = append(devices, toDeviceResponse(&descriptors[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns a single device by MAC address.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	d, err := s.registry.Get(mac)
	if err != nil {
		writeNotFound(w, "device not found: "+mac)
		return
	}

	writeJSON(w, http.StatusOK, toDeviceResponse(d))
}

// handleDeviceStats returns registry aggregates.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.registry.GetStats()

	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_devices": stats.TotalDevices,
		"online":        stats.Online,
		"by_type":       byType,
	})
}

// handleDeviceHistory returns recent attribute changes for a device.
// The limit query parameter bounds the result; the repository clamps it.
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	if _, err := s.registry.Get(mac); err != nil {
		writeNotFound(w, "device not found: "+mac)
		return
	}
	if s.history == nil {
		writeNotFound(w, "state history is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	changes, err := s.history.GetHistory(r.Context(), mac, limit)
	if err != nil {
		s.logger.Error("state history query failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to query state history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mac":     mac,
		"history": changes,
		"count":   len(changes),
	})
}

// handleRefreshDevice re-syncs one device from the add-on registry and
// rebuilds the entity set so the refreshed descriptor takes effect.
//
// Responses:
//   - 200 with the refreshed device
//   - 404: the add-on registry has no record for that MAC
//   - 502: the add-on registry is unreachable
func (s *Server) handleRefreshDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	if err := s.registry.RefreshDevice(r.Context(), mac); err != nil {
		switch {
		case errors.Is(err, addon.ErrDeviceNotFound):
			writeNotFound(w, "device not found: "+mac)
		case errors.Is(err, device.ErrInvalidMAC):
			writeBadRequest(w, "invalid mac")
		case errors.Is(err, addon.ErrRegistryUnavailable):
			writeBadGateway(w, "addon registry unreachable")
		default:
			s.logger.Error("device refresh failed", "mac", mac, "error", err)
			writeInternalError(w, "device refresh failed")
		}
		return
	}

	s.entities.Rebuild(s.registry.List())

	d, err := s.registry.Get(mac)
	if err != nil {
		writeNotFound(w, "device not found: "+mac)
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponse(d))
}

// commandRequest is the JSON body for POST /devices/{mac}/command.
//
// Value carries the command argument for brightness (0-255), colour
// temperature (Kelvin), and atomizer level. R/G/B carry the colour for
// set_rgb. Mode carries the schedule for set_atomizer_mode.
type commandRequest struct {
	Command string `json:"command"`
	Value   *int   `json:"value,omitempty"`
	R       *int   `json:"r,omitempty"`
	G       *int   `json:"g,omitempty"`
	B       *int   `json:"b,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// brightnessSetter is implemented by entities with a dimmable channel.
type brightnessSetter interface {
	SetBrightness(brightness int) error
}

// colorTemperatureSetter is implemented by entities with a tunable white channel.
type colorTemperatureSetter interface {
	SetColorTemperature(kelvin int) error
}

// rgbSetter is implemented by entities with a colour channel.
type rgbSetter interface {
	SetRGB(r, g, b int) error
}

// handleDeviceCommand dispatches a command to the entity for a device.
//
// Responses:
//   - 202 Accepted with a command ID: the command was published; the new
//     value arrives asynchronously on the device's status topic
//   - 404: no device with that MAC
//   - 422: the device does not support the command, or the value is out of range
//   - 502: the MQTT broker is unreachable
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	ent, err := s.entities.Get(mac)
	if err != nil {
		writeNotFound(w, "device not found: "+mac)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "command is required")
		return
	}

	if err := s.dispatchCommand(ent, req); err != nil {
		s.writeCommandError(w, mac, req.Command, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"command_id": uuid.NewString(),
		"status":     "accepted",
		"mac":        mac,
		"command":    req.Command,
	})
}

// dispatchCommand maps a command request onto the entity's typed setters.
// Commands a kind has no setter for report ErrCapabilityUnsupported, same
// as a capability miss inside the entity.
func (s *Server) dispatchCommand(ent entity.Entity, req commandRequest) error {
	switch req.Command {
	case "turn_on":
		return ent.SetOn(true)
	case "turn_off":
		return ent.SetOn(false)

	case "set_brightness":
		setter, ok := ent.(brightnessSetter)
		if !ok {
			return entity.ErrCapabilityUnsupported
		}
		if req.Value == nil {
			return errMissingValue
		}
		return setter.SetBrightness(*req.Value)

	case "set_color_temperature":
		setter, ok := ent.(colorTemperatureSetter)
		if !ok {
			return entity.ErrCapabilityUnsupported
		}
		if req.Value == nil {
			return errMissingValue
		}
		return setter.SetColorTemperature(*req.Value)

	case "set_rgb":
		setter, ok := ent.(rgbSetter)
		if !ok {
			return entity.ErrCapabilityUnsupported
		}
		if req.R == nil || req.G == nil || req.B == nil {
			return errMissingValue
		}
		return setter.SetRGB(*req.R, *req.G, *req.B)

	case "set_atomizer_level":
		diffuser, ok := ent.(*entity.Diffuser)
		if !ok {
			return entity.ErrCapabilityUnsupported
		}
		if req.Value == nil {
			return errMissingValue
		}
		return diffuser.SetAtomizerLevel(*req.Value)

	case "set_atomizer_mode":
		diffuser, ok := ent.(*entity.Diffuser)
		if !ok {
			return entity.ErrCapabilityUnsupported
		}
		if req.Mode == "" {
			return errMissingValue
		}
		return diffuser.SetAtomizerMode(req.Mode)

	default:
		return errUnknownCommand
	}
}

// Command dispatch sentinel errors mapped to HTTP statuses in writeCommandError.
var (
	errMissingValue   = errors.New("command requires a value")
	errUnknownCommand = errors.New("unknown command")
)

// writeCommandError maps a command dispatch error to an HTTP response.
func (s *Server) writeCommandError(w http.ResponseWriter, mac, command string, err error) {
	switch {
	case errors.Is(err, errUnknownCommand), errors.Is(err, errMissingValue):
		writeBadRequest(w, err.Error())
	case errors.Is(err, entity.ErrCapabilityUnsupported):
		writeUnprocessable(w, "device does not support "+command)
	case errors.Is(err, entity.ErrInvalidValue):
		writeUnprocessable(w, err.Error())
	case errors.Is(err, mqtt.ErrNotConnected):
		writeBadGateway(w, "mqtt broker unreachable")
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found: "+mac)
	default:
		s.logger.Error("command dispatch failed", "mac", mac, "command", command, "error", err)
		writeInternalError(w, "command dispatch failed")
	}
}
