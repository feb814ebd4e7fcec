package ws

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hexwake/server/internal/game"
	"hexwake/server/internal/hexgrid"
	"hexwake/server/internal/logging"
	"hexwake/server/internal/net/proto"
)

// Handler upgrades join requests and pumps messages between each
// websocket connection and its room.
type Handler struct {
	rooms    *game.Manager
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket entry point for a room manager.
func NewHandler(rooms *game.Manager, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{
		rooms: rooms,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle joins the requester to the room named in the URL. Player seats
// are reserved before the upgrade so a full room is refused with a
// plain HTTP 409 instead of an immediate websocket close; viewers skip
// the reservation entirely.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	viewer := r.URL.Query().Get("role") == "viewer"
	room := h.rooms.GetOrCreate(roomID)

	if !viewer {
		if err := room.ReserveSeat(); err != nil {
			reason := "room is closed"
			if errors.Is(err, game.ErrRoomFull) {
				reason = "room is full"
			}
			http.Error(w, reason, http.StatusConflict)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if !viewer {
			room.ReleaseSeat()
		}
		h.log.Warnw("websocket upgrade failed", "room", roomID, "error", err)
		return
	}

	sess := newSession(conn)
	if viewer {
		if err := room.AddViewer(sess); err != nil {
			h.log.Warnw("viewer admission failed", "room", roomID, "error", err)
			conn.Close()
			return
		}
	} else {
		if err := room.AddPlayer(sess); err != nil {
			h.log.Warnw("player admission failed", "room", roomID, "error", err)
			conn.Close()
			return
		}
	}
	h.readLoop(room, sess, conn, viewer)
}

// readLoop decodes frames until the connection dies, then detaches the
// session. Malformed or unknown messages are dropped without a reply;
// anything a viewer sends is ignored.
func (h *Handler) readLoop(room *game.Room, sess *Session, conn *websocket.Conn, viewer bool) {
	defer func() {
		room.RemoveSession(sess.ID())
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if viewer {
			continue
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.log.Debugw("discarding malformed message", "room", room.ID(), "session", sess.ID(), "error", err)
			continue
		}
		switch msg.Type {
		case proto.TypeClick:
			room.MirrorInbound(payload)
			room.HandleClick(sess.ID(), hexgrid.Axial{Q: msg.Q, R: msg.R})
		case proto.TypeSetSpeed:
			room.MirrorInbound(payload)
			room.HandleSetSpeed(sess.ID(), msg.Duration)
		default:
			h.log.Debugw("discarding unknown message type", "room", room.ID(), "session", sess.ID(), "messageType", msg.Type)
		}
	}
}
