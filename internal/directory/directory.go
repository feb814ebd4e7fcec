// Package directory keeps the room registry that lobby listings are
// served from. Rooms report their player counts best-effort; nothing in
// the game loop depends on a registration landing.
package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"hexwake/server/internal/logging"
)

// Entry describes one room with players in it.
type Entry struct {
	RoomID      string    `json:"roomId"`
	PlayerCount int       `json:"players"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Directory is an in-process registry of live rooms. Entries expire
// after a TTL so rooms that died without deregistering fall out of the
// listing on their own.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	clock   func() time.Time
	log     *zap.SugaredLogger
}

// New builds a directory whose entries go stale after ttl.
func New(ttl time.Duration, log *zap.SugaredLogger) *Directory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Directory{
		entries: make(map[string]Entry),
		ttl:     ttl,
		clock:   time.Now,
		log:     log,
	}
}

// Register upserts a room's player count. A count of zero removes the
// room from the listing.
func (d *Directory) Register(roomID string, playerCount int) {
	if roomID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if playerCount <= 0 {
		delete(d.entries, roomID)
		return
	}
	d.entries[roomID] = Entry{
		RoomID:      roomID,
		PlayerCount: playerCount,
		UpdatedAt:   d.clock(),
	}
}

// List returns registered rooms ordered by most recent update.
func (d *Directory) List() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Run expires stale entries in the background until ctx is canceled.
func (d *Directory) Run(ctx context.Context) {
	interval := d.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := d.sweep(d.clock()); removed > 0 {
				d.log.Debugw("directory sweep removed stale rooms", "count", removed)
			}
		}
	}
}

func (d *Directory) sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := 0
	for id, e := range d.entries {
		if now.Sub(e.UpdatedAt) > d.ttl {
			delete(d.entries, id)
			removed++
		}
	}
	return removed
}
