package ws

import (
	"encoding/json"
	"log"
	"time"

	"shuuro-server/internal/models"
)

// MessageTag is the wire message type, encoded as an integer. The
// order is fixed for compatibility with the deployed client: never
// reorder or renumber.
type MessageTag uint8

const (
	TagChangeRoom MessageTag = iota
	TagAddGameRequest
	TagRedirectToGame
	TagPlayerCount
	TagGameCount
	// game
	TagStartClock
	TagGetGame
	TagGetConfirmed
	TagGetHistory
	TagGetHand
	TagSelectMove
	TagPlacePiece
	TagMovePiece
	TagDraw
	TagResign
	TagGameEnd
	// tv
	TagGetTv
	TagAddTvGame
	TagNewTvMove
	TagRemoveTVGame
	TagSaveState
	TagReloadJinja
	TagConfirmSelection
)

// ClientMessage is one inbound frame: a tag plus an opaque payload the
// room owner decodes.
type ClientMessage struct {
	T MessageTag      `json:"t"`
	D json.RawMessage `json:"d"`
}

// Outbound payloads. Field names are part of the wire protocol.

type StartClock struct {
	T       MessageTag `json:"t"`
	Players [2]string  `json:"players"`
	Click   time.Time  `json:"click"`
}

type PlayersCount struct {
	T     MessageTag `json:"t"`
	Count int        `json:"count"`
}

type GamesCount struct {
	T     MessageTag `json:"t"`
	Count int        `json:"count"`
}

// RedirectPlayer points a single player at a freshly spawned game.
type RedirectPlayer struct {
	T    MessageTag `json:"t"`
	Game string     `json:"game"`
}

// RedirectToPlacement announces the placement stage; it doubles as the
// TV entry for the game.
type RedirectToPlacement struct {
	T         MessageTag `json:"t"`
	ID        string     `json:"id"`
	LastClock time.Time  `json:"last_clock"`
	Players   [2]string  `json:"players"`
	Sfen      string     `json:"sfen"`
	Variant   uint8      `json:"variant"`
}

// PlayerSelection carries a participant's own hand back to them.
type PlayerSelection struct {
	T    MessageTag `json:"t"`
	Hand string     `json:"hand"`
}

type ConfirmSelection struct {
	T         MessageTag `json:"t"`
	Confirmed [2]bool    `json:"confirmed"`
}

type PlacePiece struct {
	T              MessageTag `json:"t"`
	Clocks         [2]int64   `json:"clocks"`
	FirstMoveError bool       `json:"first_move_error"`
	NextStage      bool       `json:"next_stage"`
	Sfen           string     `json:"sfen"`
}

type MovePiece struct {
	T        MessageTag `json:"t"`
	Clocks   [2]int64   `json:"clocks"`
	Status   int32      `json:"status"`
	Result   uint8      `json:"result"`
	GameMove string     `json:"game_move"`
}

type GameDraw struct {
	T         MessageTag `json:"t"`
	DrawOffer bool       `json:"draw_offer"`
	End       int8       `json:"end"`
}

type GameEnd struct {
	T      MessageTag `json:"t"`
	Result uint8      `json:"result"`
	Status int32      `json:"status"`
}

type NewTvGame struct {
	T    MessageTag          `json:"t"`
	Game RedirectToPlacement `json:"game"`
}

type NewTvMove struct {
	T        MessageTag `json:"t"`
	Game     string     `json:"game"`
	GameMove string     `json:"game_move"`
}

type RemoveTvGame struct {
	T    MessageTag `json:"t"`
	Game string     `json:"game"`
}

type AllTvGames struct {
	T     MessageTag            `json:"t"`
	Games []RedirectToPlacement `json:"games"`
}

type LiveGame struct {
	T    MessageTag         `json:"t"`
	Game *models.ShuuroGame `json:"game"`
}

// encode marshals an outbound payload. Marshal failures are programmer
// errors; log and send nothing.
func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal ws message: %v", err)
		return nil
	}
	return data
}
