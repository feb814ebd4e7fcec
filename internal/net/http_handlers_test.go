package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hexwake/server/internal/directory"
	"hexwake/server/internal/game"
	"hexwake/server/internal/net/ws"
)

type stubSession struct {
	id string
}

func (s stubSession) ID() string        { return s.id }
func (s stubSession) Send([]byte) error { return nil }
func (s stubSession) Close()            {}

func newTestRouter(t *testing.T, clientDir string) (http.Handler, *game.Manager, *directory.Directory) {
	t.Helper()
	cfg := game.Config{MapRadius: 4, Seed: 5, TickInterval: time.Hour}
	manager := game.NewManager(cfg, nil, nil)
	dir := directory.New(time.Minute, nil)
	router := NewRouter(manager, dir, ws.NewHandler(manager, nil), RouterConfig{ClientDir: clientDir})
	return router, manager, dir
}

func TestHealthzAnswersOK(t *testing.T) {
	router, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestCreateRoomHandsOutACode(t *testing.T) {
	router, manager, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var payload struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.RoomID) != 6 {
		t.Fatalf("expected a 6 character code, got %q", payload.RoomID)
	}
	if manager.Peek(payload.RoomID) != nil {
		t.Fatalf("creating a code must not build a room")
	}
}

func TestListRoomsReflectsTheDirectory(t *testing.T) {
	router, _, dir := newTestRouter(t, "")
	dir.Register("abc123", 2)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload struct {
		Rooms []directory.Entry `json:"rooms"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Rooms) != 1 {
		t.Fatalf("expected one listed room, got %d", len(payload.Rooms))
	}
	if payload.Rooms[0].RoomID != "abc123" || payload.Rooms[0].PlayerCount != 2 {
		t.Fatalf("expected abc123 with 2 players, got %+v", payload.Rooms[0])
	}
}

func TestListRoomsIsEmptyArrayNotNull(t *testing.T) {
	router, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !strings.Contains(resp.Body.String(), `"rooms":[]`) {
		t.Fatalf("expected an empty array, got %s", resp.Body.String())
	}
}

func TestRoomStatusReportsLiveCount(t *testing.T) {
	router, manager, _ := newTestRouter(t, "")

	room := manager.GetOrCreate("abc123")
	if err := room.ReserveSeat(); err != nil {
		t.Fatalf("ReserveSeat: unexpected error %v", err)
	}
	if err := room.AddPlayer(stubSession{id: "sess-a"}); err != nil {
		t.Fatalf("AddPlayer: unexpected error %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/abc123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var payload struct {
		RoomID     string `json:"roomId"`
		Players    int    `json:"players"`
		MaxPlayers int    `json:"maxPlayers"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.RoomID != "abc123" || payload.Players != 1 || payload.MaxPlayers != 2 {
		t.Fatalf("expected abc123 with 1 of 2 players, got %+v", payload)
	}
}

func TestRoomStatusForUnknownRoomIsIdle(t *testing.T) {
	router, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/nosuch", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for an unknown room, got %d", resp.Code)
	}
	var payload struct {
		Players int `json:"players"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Players != 0 {
		t.Fatalf("expected 0 players, got %d", payload.Players)
	}
}

func TestUnsupportedMethodIsRejected(t *testing.T) {
	router, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.Code)
	}
}

func TestClientDirIsServedAtRoot(t *testing.T) {
	clientDir := t.TempDir()
	page := []byte("<html>hexwake</html>")
	if err := os.WriteFile(filepath.Join(clientDir, "index.html"), page, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	router, _, _ := newTestRouter(t, clientDir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "hexwake") {
		t.Fatalf("expected the client page, got %q", resp.Body.String())
	}
}
