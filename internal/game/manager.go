package game

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"hexwake/server/internal/logging"
)

// Manager tracks live rooms by join code. Rooms tear themselves down
// when the last player leaves; the next join under the same code gets a
// fresh room with a newly generated map.
type Manager struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	cfg      Config
	notifier DirectoryNotifier
	log      *zap.SugaredLogger
}

// NewManager builds a manager whose rooms share one config and
// directory notifier.
func NewManager(cfg Config, notifier DirectoryNotifier, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		rooms:    make(map[string]*Room),
		cfg:      cfg.normalized(),
		notifier: notifier,
		log:      log,
	}
}

// GetOrCreate returns the live room for a code, building one if none
// exists or the previous occupant has been torn down.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok && !room.Closed() {
		return room
	}
	room := NewRoom(id, m.cfg, m.notifier, m.remove, m.log)
	m.rooms[id] = room
	m.log.Infow("room created", "room", id)
	return room
}

// Peek returns the live room for a code, or nil without creating one.
func (m *Manager) Peek(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok && !room.Closed() {
		return room
	}
	return nil
}

// remove forgets a torn-down room unless a fresh room already took the
// code over.
func (m *Manager) remove(id string, room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[id] == room {
		delete(m.rooms, id)
	}
}

const roomCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewRoomCode returns a six character join code.
func NewRoomCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
