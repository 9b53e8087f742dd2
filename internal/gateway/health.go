package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	OK        bool      `json:"ok"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Routes    int       `json:"routes"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		OK:        true,
		Service:   s.cfg.Gateway.ServiceName,
		Version:   s.cfg.Gateway.Version,
		Routes:    len(s.handlers),
		Timestamp: time.Now().UTC(),
	})
}
