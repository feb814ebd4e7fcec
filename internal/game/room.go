package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"hexwake/server/internal/hexgrid"
	"hexwake/server/internal/logging"
	"hexwake/server/internal/nav"
	"hexwake/server/internal/net/proto"
)

var (
	ErrRoomFull   = errors.New("game: room is full")
	ErrRoomClosed = errors.New("game: room is closed")
)

// Session is the transport-side handle the room writes through. The
// websocket layer implements it; tests substitute in-memory fakes.
type Session interface {
	// ID uniquely identifies the connection, not the player.
	ID() string
	// Send writes one frame. An error marks the session unusable.
	Send(payload []byte) error
	// Close tears the transport down. Must be safe to call repeatedly.
	Close()
}

// DirectoryNotifier receives best-effort room occupancy updates.
type DirectoryNotifier interface {
	Register(roomID string, playerCount int)
}

// Room owns all state for one game: the generated map, up to MaxPlayers
// players, any number of viewers, and the tick that advances navigation.
// The mutex makes message handling and ticks mutually exclusive, so no
// operation ever observes a half-applied transition. All sends happen
// outside the lock; a failed send closes that session only.
type Room struct {
	id       string
	cfg      Config
	log      *zap.SugaredLogger
	notifier DirectoryNotifier
	onEmpty  func(id string, room *Room)

	mu        sync.Mutex
	world     *hexgrid.Map
	players   map[string]*playerState
	order     []string
	viewers   map[string]Session
	bySession map[string]string
	reserved  int
	stopTick  chan struct{}
	closed    bool
}

// NewRoom builds an empty room. The map is generated lazily when the
// first session connects; onEmpty runs once after teardown.
func NewRoom(id string, cfg Config, notifier DirectoryNotifier, onEmpty func(id string, room *Room), log *zap.SugaredLogger) *Room {
	if log == nil {
		log = logging.Nop()
	}
	return &Room{
		id:        id,
		cfg:       cfg.normalized(),
		log:       log,
		notifier:  notifier,
		onEmpty:   onEmpty,
		players:   make(map[string]*playerState),
		viewers:   make(map[string]Session),
		bySession: make(map[string]string),
	}
}

// ID returns the room's code.
func (r *Room) ID() string { return r.id }

// PlayerCount returns the number of connected player sessions.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// ReserveSeat holds a player slot while the HTTP upgrade completes, so
// a full room is refused before the websocket is established and two
// racing upgrades cannot both land. Every reservation is consumed by
// AddPlayer or returned with ReleaseSeat.
func (r *Room) ReserveSeat() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if len(r.players)+r.reserved >= MaxPlayers {
		return ErrRoomFull
	}
	r.reserved++
	return nil
}

// ReleaseSeat returns a reservation that never became a player.
func (r *Room) ReleaseSeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reserved > 0 {
		r.reserved--
	}
}

// AddPlayer admits a player session: it spawns the player, announces it
// to everyone already connected and sends the newcomer the one-shot
// init snapshot.
func (r *Room) AddPlayer(sess Session) error {
	r.mu.Lock()
	if r.reserved > 0 {
		r.reserved--
	}
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	if len(r.players) >= MaxPlayers {
		r.mu.Unlock()
		return ErrRoomFull
	}
	r.ensureWorldLocked()

	now := r.clock()
	state := &playerState{
		id:      uuid.NewString(),
		step:    nav.DefaultStep,
		session: sess,
	}
	state.position, state.color = r.freeSpawnLocked()
	r.players[state.id] = state
	r.order = append(r.order, state.id)
	r.bySession[sess.ID()] = state.id

	if len(r.players) == 1 {
		r.stopTick = make(chan struct{})
		go r.runTicks(r.stopTick)
	}

	spawnKey := state.position.Key()
	initPayload, initErr := proto.EncodeInit(r.initSnapshotLocked(now, &state.id))
	joinedPayload, joinedErr := proto.EncodePlayerJoined(proto.PlayerJoined{Player: state.snapshot(now)})

	others := make([]Session, 0, len(r.players)-1+len(r.viewers))
	for _, pid := range r.order {
		if pid != state.id {
			others = append(others, r.players[pid].session)
		}
	}
	viewers := r.viewerSessionsLocked()
	others = append(others, viewers...)
	r.mu.Unlock()

	r.log.Infow("player joined", "room", r.id, "player", state.id, "color", state.color, "spawn", spawnKey)
	go r.reportOccupancy()

	if joinedErr != nil {
		r.log.Warnw("failed to encode playerJoined", "room", r.id, "player", state.id, "error", joinedErr)
	} else {
		for _, s := range others {
			r.send(s, joinedPayload)
		}
		r.mirror(viewers, proto.DirectionOut, joinedPayload, now)
	}

	if initErr != nil {
		r.log.Warnw("failed to encode init snapshot", "room", r.id, "player", state.id, "error", initErr)
		sess.Close()
		r.RemoveSession(sess.ID())
		return initErr
	}
	if err := sess.Send(initPayload); err != nil {
		r.log.Warnw("failed to deliver init snapshot", "room", r.id, "player", state.id, "error", err)
		sess.Close()
		r.RemoveSession(sess.ID())
		return err
	}
	return nil
}

// AddViewer admits a passive session. Viewers receive the init snapshot
// with a null recipient id plus debug mirrors of all player traffic,
// and never hold the room open.
func (r *Room) AddViewer(sess Session) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	r.ensureWorldLocked()
	r.viewers[sess.ID()] = sess
	payload, err := proto.EncodeInit(r.initSnapshotLocked(r.clock(), nil))
	r.mu.Unlock()

	if err != nil {
		r.log.Warnw("failed to encode init snapshot", "room", r.id, "session", sess.ID(), "error", err)
		sess.Close()
		r.RemoveSession(sess.ID())
		return err
	}
	if serr := sess.Send(payload); serr != nil {
		sess.Close()
		r.RemoveSession(sess.ID())
		return serr
	}
	r.log.Infow("viewer joined", "room", r.id, "session", sess.ID())
	return nil
}

// RemoveSession detaches a session. Removing the last player tears the
// room down entirely: remaining viewers are closed and the next join
// goes to a fresh room with a newly generated map.
func (r *Room) RemoveSession(sessionID string) {
	r.mu.Lock()
	if _, ok := r.viewers[sessionID]; ok {
		delete(r.viewers, sessionID)
		empty := len(r.players) == 0 && len(r.viewers) == 0
		if empty {
			r.teardownLocked()
		}
		r.mu.Unlock()
		r.log.Infow("viewer left", "room", r.id, "session", sessionID)
		if empty {
			r.finishTeardown(nil)
		}
		return
	}

	pid, ok := r.bySession[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.bySession, sessionID)
	delete(r.players, pid)
	for i, id := range r.order {
		if id == pid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	now := r.clock()
	leftPayload, err := proto.EncodePlayerLeft(proto.PlayerLeft{ID: pid})
	recipients, viewers := r.gatherSessionsLocked()
	torndown := len(r.players) == 0
	if torndown {
		r.teardownLocked()
	}
	r.mu.Unlock()

	r.log.Infow("player left", "room", r.id, "player", pid)
	go r.reportOccupancy()

	if err != nil {
		r.log.Warnw("failed to encode playerLeft", "room", r.id, "player", pid, "error", err)
	} else {
		for _, s := range recipients {
			r.send(s, leftPayload)
		}
		r.mirror(viewers, proto.DirectionOut, leftPayload, now)
	}
	if torndown {
		r.finishTeardown(viewers)
	}
}

// HandleClick starts or reroutes navigation toward the clicked tile.
// Unknown sessions, off-map targets and unreachable targets are all
// silent no-ops; a reroute that finds no course keeps the old plan.
func (r *Room) HandleClick(sessionID string, target hexgrid.Axial) {
	r.mu.Lock()
	pid, ok := r.bySession[sessionID]
	if !ok || r.world == nil || !r.world.Contains(target) {
		r.mu.Unlock()
		return
	}
	p := r.players[pid]
	now := r.clock()
	occupied := r.occupiedLocked(pid)
	from := p.currentTile(now)

	if p.plan == nil {
		path := nav.FindPath(r.world, p.position, target, occupied)
		if len(path) == 0 {
			r.mu.Unlock()
			return
		}
		p.plan = &nav.Plan{Path: path, StartedAt: now, Step: p.step}
	} else {
		anchor := p.plan.NextTile(now)
		var rest []hexgrid.Axial
		if anchor != target {
			rest = nav.FindPath(r.world, anchor, target, occupied)
			if len(rest) == 0 {
				r.mu.Unlock()
				return
			}
		}
		p.plan = p.plan.Reroute(now, anchor, rest)
	}
	payloads := r.appendNavPlan(nil, p, from, now)
	recipients, viewers := r.gatherSessionsLocked()
	r.mu.Unlock()

	r.log.Debugw("click routed", "room", r.id, "player", pid, "target", target.Key())
	for _, payload := range payloads {
		for _, s := range recipients {
			r.send(s, payload)
		}
		r.mirror(viewers, proto.DirectionOut, payload, now)
	}
}

// HandleSetSpeed updates the per-tile duration used by the player's
// future plans. An active plan keeps the cadence it started with.
func (r *Room) HandleSetSpeed(sessionID string, durationMS int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pid, ok := r.bySession[sessionID]
	if !ok {
		return
	}
	r.players[pid].step = nav.ClampStep(time.Duration(durationMS) * time.Millisecond)
}

// MirrorInbound forwards a player's raw command to viewers as a debug
// frame.
func (r *Room) MirrorInbound(payload []byte) {
	r.mu.Lock()
	viewers := r.viewerSessionsLocked()
	now := r.clock()
	r.mu.Unlock()
	r.mirror(viewers, proto.DirectionIn, payload, now)
}

// Tick advances every moving player in stable join order: arrivals
// commit the destination and clear the plan, boundary crossings into a
// tile another player currently holds trigger a full re-path toward the
// original destination, and everything else commits the clock-derived
// position. Join-order processing means the earlier joiner keeps a
// contested tile and the later one reroutes, so a tick never ends with
// two players on the same tile.
func (r *Room) Tick() {
	r.mu.Lock()
	if r.closed || len(r.players) == 0 {
		r.mu.Unlock()
		return
	}
	now := r.clock()
	var payloads [][]byte
	for _, pid := range r.order {
		p := r.players[pid]
		if p.plan == nil {
			continue
		}
		candidate := p.currentTile(now)
		if candidate != p.position && r.tileHeldLocked(pid, candidate) {
			dest := p.plan.Destination()
			path := nav.FindPath(r.world, p.position, dest, r.occupiedLocked(pid))
			if len(path) == 0 {
				p.plan = nil
				payloads = r.appendNavEnd(payloads, pid, p.position)
			} else {
				p.plan = &nav.Plan{Path: path, StartedAt: now, Step: p.step}
				payloads = r.appendNavPlan(payloads, p, p.position, now)
			}
			continue
		}
		p.position = candidate
		if p.plan.Arrived(now) {
			p.plan = nil
			payloads = r.appendNavEnd(payloads, pid, p.position)
		}
	}
	if len(payloads) == 0 {
		r.mu.Unlock()
		return
	}
	recipients, viewers := r.gatherSessionsLocked()
	r.mu.Unlock()

	for _, payload := range payloads {
		for _, s := range recipients {
			r.send(s, payload)
		}
		r.mirror(viewers, proto.DirectionOut, payload, now)
	}
}

func (r *Room) runTicks(stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

func (r *Room) clock() time.Time {
	return r.cfg.Clock()
}

func (r *Room) ensureWorldLocked() {
	if r.world != nil {
		return
	}
	seed := r.cfg.Seed
	if seed == 0 {
		seed = hexgrid.RandomSeed()
	}
	r.world = hexgrid.Generate(seed, r.cfg.MapRadius, r.cfg.LandChance)
	r.log.Infow("room world generated",
		"room", r.id,
		"seed", seed,
		"radius", r.cfg.MapRadius,
		"tiles", r.world.TileCount(),
	)
}

// freeSpawnLocked picks the first unused color slot. If another player
// has sailed onto that slot's tile, the spawn falls back to the other
// slot's tile; with two slots and one other player a free tile always
// exists.
func (r *Room) freeSpawnLocked() (hexgrid.Axial, string) {
	takenColors := make(map[string]struct{}, len(r.players))
	takenTiles := make(map[hexgrid.Axial]struct{}, len(r.players))
	for _, p := range r.players {
		takenColors[p.color] = struct{}{}
		takenTiles[p.position] = struct{}{}
	}
	slot := 0
	for i, color := range spawnColors {
		if _, used := takenColors[color]; !used {
			slot = i
			break
		}
	}
	tile := spawnTiles[slot]
	if _, blocked := takenTiles[tile]; blocked {
		for _, fallback := range spawnTiles {
			if _, used := takenTiles[fallback]; !used {
				tile = fallback
				break
			}
		}
	}
	return tile, spawnColors[slot]
}

func (r *Room) initSnapshotLocked(now time.Time, you *string) proto.Init {
	players := make([]proto.Player, 0, len(r.players))
	for _, pid := range r.order {
		players = append(players, r.players[pid].snapshot(now))
	}
	return proto.Init{
		Map: proto.MapSnapshot{
			Seed:       r.world.Seed,
			Radius:     r.world.Radius,
			LandChance: r.world.LandChance,
			Tiles:      r.world.Tiles(),
		},
		Players: players,
		You:     you,
	}
}

func (r *Room) occupiedLocked(exclude string) mapset.Set[hexgrid.Axial] {
	occupied := mapset.New[hexgrid.Axial]()
	for id, p := range r.players {
		if id != exclude {
			occupied.Put(p.position)
		}
	}
	return occupied
}

func (r *Room) tileHeldLocked(exclude string, tile hexgrid.Axial) bool {
	for id, p := range r.players {
		if id != exclude && p.position == tile {
			return true
		}
	}
	return false
}

func (r *Room) gatherSessionsLocked() ([]Session, []Session) {
	recipients := make([]Session, 0, len(r.players)+len(r.viewers))
	for _, pid := range r.order {
		recipients = append(recipients, r.players[pid].session)
	}
	viewers := r.viewerSessionsLocked()
	recipients = append(recipients, viewers...)
	return recipients, viewers
}

func (r *Room) viewerSessionsLocked() []Session {
	viewers := make([]Session, 0, len(r.viewers))
	for _, v := range r.viewers {
		viewers = append(viewers, v)
	}
	return viewers
}

func (r *Room) appendNavPlan(payloads [][]byte, p *playerState, from hexgrid.Axial, now time.Time) [][]byte {
	data, err := proto.EncodeNavPlan(proto.NavPlan{
		ID:           p.id,
		Path:         p.plan.Path,
		Duration:     p.plan.Step.Milliseconds(),
		FromPosition: from,
		Elapsed:      p.plan.Elapsed(now),
	})
	if err != nil {
		r.log.Warnw("failed to encode navPlan", "room", r.id, "player", p.id, "error", err)
		return payloads
	}
	return append(payloads, data)
}

func (r *Room) appendNavEnd(payloads [][]byte, pid string, at hexgrid.Axial) [][]byte {
	data, err := proto.EncodeNavEnd(proto.NavEnd{ID: pid, Position: at})
	if err != nil {
		r.log.Warnw("failed to encode navEnd", "room", r.id, "player", pid, "error", err)
		return payloads
	}
	return append(payloads, data)
}

// send writes one frame outside the room lock. Failures close the
// session; its read loop then detaches it through RemoveSession.
func (r *Room) send(sess Session, payload []byte) {
	if err := sess.Send(payload); err != nil {
		r.log.Warnw("dropping unwritable session", "room", r.id, "session", sess.ID(), "error", err)
		sess.Close()
	}
}

func (r *Room) mirror(viewers []Session, direction string, payload []byte, at time.Time) {
	if len(viewers) == 0 {
		return
	}
	data, err := proto.EncodeDebug(direction, payload, at.UnixMilli())
	if err != nil {
		r.log.Warnw("failed to encode debug mirror", "room", r.id, "error", err)
		return
	}
	for _, v := range viewers {
		r.send(v, data)
	}
}

// reportOccupancy pushes the live player count to the directory.
// Registrations are best-effort; the TTL sweep cleans up anything a
// lost update leaves behind.
func (r *Room) reportOccupancy() {
	if r.notifier == nil {
		return
	}
	r.notifier.Register(r.id, r.PlayerCount())
}

func (r *Room) teardownLocked() {
	if r.closed {
		return
	}
	r.closed = true
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
	r.world = nil
	r.players = make(map[string]*playerState)
	r.order = nil
	r.viewers = make(map[string]Session)
	r.bySession = make(map[string]string)
}

func (r *Room) finishTeardown(viewers []Session) {
	for _, v := range viewers {
		v.Close()
	}
	if r.onEmpty != nil {
		r.onEmpty(r.id, r)
	}
	r.log.Infow("room torn down", "room", r.id)
}
