package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// ConfigAPI provides HTTP endpoints to view, validate and reload configuration
type ConfigAPI struct {
	cfg      *Config
	mu       sync.RWMutex
	reload   func() (*Config, error)
	onReload func(*Config) error
}

// NewConfigAPI serves cfg. reload is called by POST /configure/reload; nil
// means Load with the default search paths.
func NewConfigAPI(cfg *Config, reload func() (*Config, error)) *ConfigAPI {
	if reload == nil {
		reload = func() (*Config, error) { return Load() }
	}
	return &ConfigAPI{cfg: cfg, reload: reload}
}

// OnReload sets fn to apply a reloaded, validated config before it replaces
// the current one. An error from fn keeps the current config.
func (api *ConfigAPI) OnReload(fn func(*Config) error) {
	api.mu.Lock()
	api.onReload = fn
	api.mu.Unlock()
}

// Register mounts the configuration routes on r.
func (api *ConfigAPI) Register(r *mux.Router) {
	r.HandleFunc("/configure", api.getConfig).Methods(http.MethodGet)
	r.HandleFunc("/configure/", api.getConfig).Methods(http.MethodGet)
	r.HandleFunc("/configure/reload", api.reloadConfig).Methods(http.MethodPost)
	r.HandleFunc("/configure/validate", api.validateConfig).Methods(http.MethodPost)
}

func (api *ConfigAPI) getConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.RLock()
	defer api.mu.RUnlock()
	writeJSON(w, http.StatusOK, api.cfg.Masked())
}

func (api *ConfigAPI) reloadConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()
	reloaded, err := api.reload()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to reload config: %v", err), http.StatusInternalServerError)
		return
	}
	if err := reloaded.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}
	if api.onReload != nil {
		if err := api.onReload(reloaded); err != nil {
			http.Error(w, fmt.Sprintf("failed to apply config: %v", err), http.StatusInternalServerError)
			return
		}
	}
	*api.cfg = *reloaded
	writeJSON(w, http.StatusOK, api.cfg.Masked())
}

func (api *ConfigAPI) validateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid config payload: %v", err), http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true, "message": "configuration is valid"})
}

// Masked returns a copy with secrets replaced by "***".
func (c *Config) Masked() *Config {
	masked := *c
	if masked.LLM.APIKey != "" {
		masked.LLM.APIKey = "***"
	}
	if masked.MinIO.AccessKey != "" {
		masked.MinIO.AccessKey = "***"
	}
	if masked.MinIO.SecretKey != "" {
		masked.MinIO.SecretKey = "***"
	}
	return &masked
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
