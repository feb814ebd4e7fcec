// Package proto defines the JSON payloads exchanged over a room's
// websocket sessions.
package proto

import (
	"encoding/json"

	"hexwake/server/internal/hexgrid"
)

// Client message type identifiers.
const (
	TypeClick    = "click"
	TypeSetSpeed = "setSpeed"
)

// Server message type identifiers.
const (
	TypeInit         = "init"
	TypePlayerJoined = "playerJoined"
	TypePlayerLeft   = "playerLeft"
	TypeNavPlan      = "navPlan"
	TypeNavEnd       = "navEnd"
	TypeDebug        = "debug"
)

// Debug mirror directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// ClientMessage is the envelope for inbound websocket payloads. Click
// messages carry q/r, setSpeed carries duration in milliseconds.
type ClientMessage struct {
	Type     string `json:"type"`
	Q        int    `json:"q"`
	R        int    `json:"r"`
	Duration int    `json:"duration"`
}

// DecodeClientMessage parses a raw websocket frame. Callers treat any
// error as a malformed message and drop it without replying.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// MapSnapshot carries everything a client needs to render the board.
type MapSnapshot struct {
	Seed       int64          `json:"seed"`
	Radius     int            `json:"radius"`
	LandChance float64        `json:"landChance"`
	Tiles      []hexgrid.Tile `json:"tiles"`
}

// ActivePlan is the in-flight navigation state attached to a player
// snapshot so late joiners can resume the animation mid-step.
type ActivePlan struct {
	Path     []hexgrid.Axial `json:"path"`
	Duration int64           `json:"duration"`
	Elapsed  int64           `json:"elapsed"`
}

// Player is the public snapshot of one player.
type Player struct {
	ID       string        `json:"id"`
	Color    string        `json:"color"`
	Position hexgrid.Axial `json:"position"`
	Plan     *ActivePlan   `json:"plan,omitempty"`
}

// Init is sent exactly once to each new session. You carries the
// recipient's player id and stays null for viewers.
type Init struct {
	Type    string      `json:"type"`
	Map     MapSnapshot `json:"map"`
	Players []Player    `json:"players"`
	You     *string     `json:"you"`
}

// PlayerJoined announces a new player to the sessions that were already
// connected.
type PlayerJoined struct {
	Type string `json:"type"`
	Player
}

// PlayerLeft announces a disconnect.
type PlayerLeft struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NavPlan announces a new or replaced navigation plan. FromPosition is
// the tile the player occupies as the plan begins; Elapsed reports
// milliseconds already spent on it (non-zero after a reroute).
type NavPlan struct {
	Type         string          `json:"type"`
	ID           string          `json:"id"`
	Path         []hexgrid.Axial `json:"path"`
	Duration     int64           `json:"duration"`
	FromPosition hexgrid.Axial   `json:"fromPosition"`
	Elapsed      int64           `json:"elapsed"`
}

// NavEnd announces that a player stopped, by arrival or because no
// route remained.
type NavEnd struct {
	Type     string        `json:"type"`
	ID       string        `json:"id"`
	Position hexgrid.Axial `json:"position"`
}

// Debug wraps a copy of any message that crossed the wire. Only viewer
// sessions receive these.
type Debug struct {
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// EncodeInit renders the one-shot room snapshot payload.
func EncodeInit(msg Init) ([]byte, error) {
	msg.Type = TypeInit
	return json.Marshal(msg)
}

// EncodePlayerJoined renders a join announcement.
func EncodePlayerJoined(msg PlayerJoined) ([]byte, error) {
	msg.Type = TypePlayerJoined
	return json.Marshal(msg)
}

// EncodePlayerLeft renders a leave announcement.
func EncodePlayerLeft(msg PlayerLeft) ([]byte, error) {
	msg.Type = TypePlayerLeft
	return json.Marshal(msg)
}

// EncodeNavPlan renders a navigation plan announcement.
func EncodeNavPlan(msg NavPlan) ([]byte, error) {
	msg.Type = TypeNavPlan
	return json.Marshal(msg)
}

// EncodeNavEnd renders a navigation stop announcement.
func EncodeNavEnd(msg NavEnd) ([]byte, error) {
	msg.Type = TypeNavEnd
	return json.Marshal(msg)
}

// EncodeDebug renders a viewer-only mirror of traffic. The payload is
// embedded verbatim.
func EncodeDebug(direction string, payload []byte, timestamp int64) ([]byte, error) {
	return json.Marshal(Debug{
		Type:      TypeDebug,
		Direction: direction,
		Payload:   json.RawMessage(payload),
		Timestamp: timestamp,
	})
}
