package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/door-control/dcc/internal/config"
)

// doorView is the wire representation of one mapping. PDO is shown
// one-based, the way operators configured it.
type doorView struct {
	Name        string `json:"name"`
	CMIAddress  string `json:"cmiAddress"`
	CMIPort     uint16 `json:"cmiPort"`
	VirtualNode uint8  `json:"virtualNode"`
	PDO         uint8  `json:"pdo"`
}

func viewOf(m config.DoorMapping) doorView {
	return doorView{
		Name:        m.Name,
		CMIAddress:  m.CMIAddress,
		CMIPort:     m.CMIPort,
		VirtualNode: m.VirtualNode,
		PDO:         m.PDO + 1,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/doors", s.handleDoors).Methods(http.MethodGet)
	v1.HandleFunc("/doors/{name}", s.handleDoor).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"uptimeSeconds": int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleDoors(w http.ResponseWriter, r *http.Request) {
	doors := s.doors.Doors()
	views := make([]doorView, 0, len(doors))
	for _, m := range doors {
		views = append(views, viewOf(m))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (s *Server) handleDoor(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, m := range s.doors.Doors() {
		if m.Name == name {
			s.writeJSON(w, http.StatusOK, viewOf(m))
			return
		}
	}
	s.writeJSON(w, http.StatusNotFound, map[string]any{
		"result":  "error",
		"code":    "NOT_FOUND",
		"message": "door is not known",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("writing ops response", "err", err)
	}
}
