package models

import (
	"math/rand"
	"strings"
	"time"

	"shuuro-server/internal/game"
	"shuuro-server/internal/shuuro"
)

// Game status codes. Negative is unfinished, positive is terminal.
const (
	StatusNotStarted     int32 = -2
	StatusLive           int32 = -1
	StatusCheckmate      int32 = 1
	StatusStalemate      int32 = 3
	StatusRepetition     int32 = 4
	StatusDrawAgreed     int32 = 5
	StatusDrawMaterial   int32 = 6
	StatusResigned       int32 = 7
	StatusLostOnTime     int32 = 8
	StatusFirstMoveError int32 = 9
	StatusAborted        int32 = 10
)

// Result codes: index of the winning color, or 2 for draw/no winner.
const (
	ResultWhite uint8 = 0
	ResultBlack uint8 = 1
	ResultNone  uint8 = 2
)

// DurationRange is the whitelist of accepted minute and increment
// values for game requests.
var DurationRange = []int64{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
	25, 30, 35, 40, 45, 60, 75, 90,
}

func inDurationRange(v int64) bool {
	for _, d := range DurationRange {
		if d == v {
			return true
		}
	}
	return false
}

// GameType is the opponent slot of a request: a named friend (empty
// name means anyone) or the built-in AI with a search depth.
type GameType struct {
	VsFriend *string `json:"vs_friend,omitempty"`
	VsAi     *uint8  `json:"vs_ai,omitempty"`
}

// PlayerName resolves the opponent's name; AI seats are always "AI".
func (t GameType) PlayerName() string {
	if t.VsAi != nil {
		return "AI"
	}
	if t.VsFriend != nil {
		return strings.ReplaceAll(*t.VsFriend, " ", "")
	}
	return ""
}

// Depth returns the requested AI search depth, zero for human games.
func (t GameType) Depth() uint8 {
	if t.VsAi != nil {
		return *t.VsAi
	}
	return 0
}

// GameRequest is an open challenge as sent by the client.
type GameRequest struct {
	Minutes    int64    `json:"minutes"`
	Incr       int64    `json:"incr"`
	Variant    string   `json:"variant"`
	SubVariant *uint8   `json:"sub_variant"`
	Color      string   `json:"color"`
	GameType   GameType `json:"game_type"`
}

// IsValid checks the variant tag and the duration whitelist.
func (r *GameRequest) IsValid() bool {
	known := false
	for _, v := range shuuro.VariantNames {
		if v == r.Variant {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	return inDurationRange(r.Minutes) && (r.Incr == 0 || inDurationRange(r.Incr))
}

// VariantTag maps the request's variant name to its stored tag.
func (r *GameRequest) VariantTag() shuuro.Variant {
	for i, v := range shuuro.VariantNames {
		if v == r.Variant {
			return shuuro.Variant(i)
		}
	}
	return shuuro.VariantShuuro
}

// ResolvedSubVariant validates the optional sub-variant against the
// variant, returning SubVariantNone when it does not apply.
func (r *GameRequest) ResolvedSubVariant() shuuro.SubVariant {
	if r.SubVariant == nil {
		return shuuro.SubVariantNone
	}
	sv := shuuro.SubVariant(*r.SubVariant)
	if !sv.Valid(r.VariantTag()) {
		return shuuro.SubVariantNone
	}
	return sv
}

// Colors seats the caller and the opponent, honouring the declared
// color preference or flipping a coin.
func (r *GameRequest) Colors(caller, other string) [2]string {
	color := r.Color
	if color != "white" && color != "black" {
		if rand.Intn(2) == 0 {
			color = "white"
		} else {
			color = "black"
		}
	}
	if color == "white" {
		return [2]string{caller, other}
	}
	return [2]string{other, caller}
}

// History holds the move lists of the three stages: selection,
// placement, fight.
type History [3][]string

// ShuuroGame is the persisted match document. Durations are integer
// milliseconds. The draw-offer flags are transient and never stored.
type ShuuroGame struct {
	ID             string            `json:"_id" bson:"_id"`
	Min            int64             `json:"min" bson:"min"`
	Incr           int64             `json:"incr" bson:"incr"`
	Players        [2]string         `json:"players" bson:"players"`
	SideToMove     uint8             `json:"side_to_move" bson:"side_to_move"`
	Clocks         [2]int64          `json:"clocks" bson:"clocks"`
	LastClock      time.Time         `json:"last_clock" bson:"last_clock"`
	CurrentStage   uint8             `json:"current_stage" bson:"current_stage"`
	Result         uint8             `json:"result" bson:"result"`
	Status         int32             `json:"status" bson:"status"`
	Variant        uint8             `json:"variant" bson:"variant"`
	Credits        [2]uint16         `json:"credits" bson:"credits"`
	Hands          [2]string         `json:"hands" bson:"hands"`
	Sfen           string            `json:"sfen" bson:"sfen"`
	History        History           `json:"history" bson:"history"`
	GameStart      string            `json:"game_start" bson:"game_start"`
	PlacementStart string            `json:"placement_start" bson:"placement_start"`
	TC             *game.TimeControl `json:"tc" bson:"tc"`
	Draws          [2]bool           `json:"-" bson:"-"`
	SubVariant     uint8             `json:"sub_variant" bson:"sub_variant"`
}

// NewShuuroGame builds a fresh match document from an accepted request.
func NewShuuroGame(r *GameRequest, players [2]string, id string) *ShuuroGame {
	clock := (r.Minutes*60 + r.Incr) * 1000
	return &ShuuroGame{
		ID:           id,
		Min:          r.Minutes * 60 * 1000,
		Incr:         r.Incr * 1000,
		Players:      players,
		SideToMove:   0,
		Clocks:       [2]int64{clock, clock},
		LastClock:    time.Now(),
		CurrentStage: 0,
		Result:       ResultNone,
		Status:       StatusNotStarted,
		Variant:      uint8(r.VariantTag()),
		Credits:      [2]uint16{shuuro.StartingCredits, shuuro.StartingCredits},
		Hands:        [2]string{"", ""},
		History:      History{{}, {}, {}},
		TC:           game.NewTimeControl(r.Minutes, r.Incr),
		SubVariant:   uint8(r.ResolvedSubVariant()),
	}
}

// PlayerIndex finds which seat a username occupies, if any.
func (g *ShuuroGame) PlayerIndex(username string) (int, bool) {
	for i, p := range g.Players {
		if p == username {
			return i, true
		}
	}
	return 0, false
}
