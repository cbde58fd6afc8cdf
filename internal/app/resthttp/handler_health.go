package resthttp

import (
	"encoding/json"
	"net/http"
)

type healthStats struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend"`
	Debug   bool   `json:"debug"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := healthStats{OK: true}
	if s.Cfg != nil {
		stats.Backend = s.Cfg.Storage.Backend
		stats.Debug = s.Cfg.Debug
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
