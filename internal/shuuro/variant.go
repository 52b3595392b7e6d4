package shuuro

// Variant is a board-size + piece-set combination. The integer tags are
// part of the wire and storage formats and must not be reordered.
type Variant uint8

const (
	VariantShuuro Variant = iota
	VariantShuuroFairy
	VariantStandard
	VariantStandardFairy
	VariantShuuroMini
	VariantShuuroMiniFairy
)

// Names accepted in game requests, indexed by variant tag.
var VariantNames = [6]string{
	"shuuro",
	"shuuroFairy",
	"standard",
	"standardFairy",
	"shuuroMini",
	"shuuroMiniFairy",
}

func (v Variant) String() string {
	if int(v) < len(VariantNames) {
		return VariantNames[v]
	}
	return VariantNames[0]
}

// VariantFromTag maps a stored tag back to a variant, defaulting to shuuro.
func VariantFromTag(tag uint8) Variant {
	if tag <= uint8(VariantShuuroMiniFairy) {
		return Variant(tag)
	}
	return VariantShuuro
}

// BoardSize returns the side length of the variant's board.
func (v Variant) BoardSize() int {
	switch v {
	case VariantShuuroMini, VariantShuuroMiniFairy:
		return 6
	case VariantStandard, VariantStandardFairy:
		return 8
	default:
		return 12
	}
}

// Fairy reports whether the chancellor, archbishop and giraffe are in play.
func (v Variant) Fairy() bool {
	switch v {
	case VariantShuuroFairy, VariantStandardFairy, VariantShuuroMiniFairy:
		return true
	}
	return false
}

// SubVariant selects a preloaded opening for the 8x8 variants. The stored
// encoding uses SubVariantNone (100) for "not set".
type SubVariant uint8

const (
	SubVariantPlacement SubVariant = 0 // classic armies in hand, start at placement
	SubVariantFight     SubVariant = 1 // classic starting array, start at fight
	SubVariantNone      SubVariant = 100
)

// Valid reports whether the sub-variant applies to the given variant.
func (sv SubVariant) Valid(v Variant) bool {
	return (sv == SubVariantPlacement || sv == SubVariantFight) && v.BoardSize() == 8
}

// StartingStage is the stage a sub-variant game opens in.
func (sv SubVariant) StartingStage() uint8 {
	if sv == SubVariantFight {
		return 2
	}
	return 1
}

const classicArmy = "KQRRBBNNPPPPPPPP"

// StartingPosition returns the sfen seed for the sub-variant's first stage.
func (sv SubVariant) StartingPosition() string {
	if sv == SubVariantFight {
		return "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - 1"
	}
	hand := classicArmy + lowercase(classicArmy)
	return "8/8/8/8/8/8/8/8 w " + hand + " 1"
}

func lowercase(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, r+('a'-'A'))
	}
	return string(out)
}
