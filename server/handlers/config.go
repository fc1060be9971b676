package handlers

import (
	"log/slog"
	"net/http"
)

// ConfigHandler serves the running configuration as YAML with the session
// key redacted.
type ConfigHandler struct {
	provider ConfigProvider
	logger   *slog.Logger
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(provider ConfigProvider, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{provider: provider, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := h.provider.Config().Redacted().Marshal()
	if err != nil {
		h.logger.Error("failed to encode config", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to encode config"})
		return
	}

	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("failed to write config response", "error", err)
	}
}
