package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wakegate/config"
	"wakegate/core/store"
	"wakegate/core/utils"
	"wakegate/core/wol"
)

// WakeSender sends a magic packet for the given MAC to a broadcast address.
// Injected so tests do not touch the network.
type WakeSender func(mac, broadcastAddr string) error

type DevicesHandler struct {
	cfg     *config.AppConfig
	devices store.DevicesStore
	send    WakeSender
	logger  *utils.Logger
}

func NewDevicesHandler(cfg *config.AppConfig, devices store.DevicesStore, send WakeSender, logger *utils.Logger) *DevicesHandler {
	if send == nil {
		send = wol.Send
	}
	return &DevicesHandler{cfg: cfg, devices: devices, send: send, logger: logger}
}

func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	if devices == nil {
		devices = []store.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

type deviceRequest struct {
	Name      string `json:"name"`
	MAC       string `json:"mac"`
	ProbeHost string `json:"probe_host"`
}

func (r *deviceRequest) validate() (string, bool) {
	r.Name = strings.TrimSpace(r.Name)
	r.MAC = strings.TrimSpace(r.MAC)
	r.ProbeHost = strings.TrimSpace(r.ProbeHost)
	if r.Name == "" {
		return "name is required", false
	}
	if err := utils.ValidateMAC(r.MAC); err != nil {
		return err.Error(), false
	}
	return "", true
}

func (h *DevicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation", msg)
		return
	}
	d := &store.Device{Name: req.Name, MAC: req.MAC, ProbeHost: req.ProbeHost}
	if err := h.devices.Create(r.Context(), d); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DevicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation", msg)
		return
	}
	d, err := h.devices.Get(r.Context(), id)
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	d.Name = req.Name
	d.MAC = req.MAC
	d.ProbeHost = req.ProbeHost
	if err := h.devices.Update(r.Context(), d); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DevicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.devices.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *DevicesHandler) Wake(w http.ResponseWriter, r *http.Request) {
	d, err := h.devices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	if err := h.send(d.MAC, h.cfg.BroadcastAddr); err != nil {
		wakePackets.WithLabelValues("error").Inc()
		if h.logger != nil {
			h.logger.Errorf("wake %s: %v", d.MAC, err)
		}
		writeError(w, http.StatusBadGateway, "wake_failed", "Could not send wake packet")
		return
	}
	wakePackets.WithLabelValues("success").Inc()
	if h.logger != nil {
		h.logger.Printf("wake packet sent mac=%s", d.MAC)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
