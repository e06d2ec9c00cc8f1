package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/hub"
	"github.com/jbuehler23/eryndor-mmo/internal/net/ws"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/schema/content", s.handleContentSchema)
	mux.HandleFunc("/join", s.handleJoin)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status     string           `json:"status"`
		ServerTime int64            `json:"serverTime"`
		TickRate   int              `json:"tickRate"`
		Hub        hub.Diagnostics  `json:"hub"`
		Logging    logStats         `json:"logging"`
		Telemetry  map[string]int64 `json:"telemetry"`
	}{
		Status:     "ok",
		ServerTime: time.Now().UnixMilli(),
		TickRate:   s.cfg.TickRate,
		Hub:        s.hub.DiagnosticsSnapshot(),
		Logging:    logStats{Events: s.router.Stats().EventsTotal, Dropped: s.router.Stats().DroppedTotal},
		Telemetry:  s.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

type logStats struct {
	Events  uint64 `json:"events"`
	Dropped uint64 `json:"dropped"`
}

func (s *Server) handleContentSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := catalog.ContentSchemaJSON()
	if err != nil {
		http.Error(w, "failed to encode schema", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(schema)
}

type joinRequest struct {
	CharacterID string `json:"id"`
	Name        string `json:"name"`
	Class       string `json:"class"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed join request", http.StatusBadRequest)
		return
	}

	class := state.Class(req.Class)
	if req.CharacterID == "" {
		parsed, ok := state.ParseClass(req.Class)
		if !ok {
			http.Error(w, "unknown class", http.StatusBadRequest)
			return
		}
		class = parsed
	}

	join, err := s.hub.Join(r.Context(), req.CharacterID, req.Name, class)
	if err != nil {
		s.logger.Printf("join failed: %v", err)
		http.Error(w, "join failed", http.StatusConflict)
		return
	}
	writeJSON(w, join)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	characterID := r.URL.Query().Get("id")
	if characterID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed for %s: %v", characterID, err)
		return
	}
	session := ws.NewSession(conn)

	keyframe, ok := s.hub.Subscribe(characterID, session)
	if !ok {
		session.Close(websocket.ClosePolicyViolation, "unknown character")
		return
	}

	if err := session.Send(keyframe); err != nil {
		s.hub.Disconnect(characterID)
		return
	}

	for {
		payload, err := session.ReadMessage()
		if err != nil {
			s.hub.Disconnect(characterID)
			return
		}
		s.hub.HandleMessage(characterID, payload)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
