// Package net assembles the HTTP surface of the server: room lifecycle
// endpoints, the websocket upgrade and the static client.
package net

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"hexwake/server/internal/directory"
	"hexwake/server/internal/game"
	"hexwake/server/internal/net/ws"
)

type RouterConfig struct {
	// ClientDir is served at the root path when non-empty.
	ClientDir string
}

// NewRouter wires every route the server exposes. Room state endpoints
// answer from the live manager; the room listing answers from the
// directory, which also covers rooms hosted by other processes.
func NewRouter(rooms *game.Manager, dir *directory.Directory, wsHandler *ws.Handler, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/rooms", func(w http.ResponseWriter, _ *http.Request) {
		// Codes are handed out without creating anything; the room
		// itself is built lazily when the first session connects.
		respondWithJSON(w, http.StatusCreated, map[string]any{
			"roomId":     game.NewRoomCode(),
			"players":    0,
			"maxPlayers": game.MaxPlayers,
		})
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/rooms", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]any{"rooms": dir.List()})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/rooms/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		players := 0
		if room := rooms.Peek(id); room != nil {
			players = room.PlayerCount()
		}
		respondWithJSON(w, http.StatusOK, map[string]any{
			"roomId":     id,
			"players":    players,
			"maxPlayers": game.MaxPlayers,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws/{id}", wsHandler.Handle).Methods(http.MethodGet)

	if cfg.ClientDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.ClientDir)))
	}

	return r
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}
