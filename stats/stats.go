package stats

import "math"

// Stats is the five-stat combat block every account carries. The arena
// snapshots these at registration so mid-match stat changes elsewhere
// in the game never leak into an ongoing match.
type Stats struct {
	Strength  int `db:"strength" json:"strength"`
	Defense   int `db:"defense" json:"defense"`
	Speed     int `db:"speed" json:"speed"`
	Intellect int `db:"intellect" json:"intellect"`
	Luck      int `db:"luck" json:"luck"`
}

// Ranks is the progression ladder, worst first. Rank comparisons are
// ordinal positions in this slice.
var Ranks = []string{"Wood", "Bronze", "Silver", "Gold", "Diamond", "Warlord"}

// RankIndex returns the ordinal position of a rank, or -1 for an
// unknown rank.
func RankIndex(rank string) int {
	for i, r := range Ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

// RankAtLeast reports whether rank meets the minimum. An empty or
// unknown minimum disables the gate entirely.
func RankAtLeast(rank, min string) bool {
	minIdx := RankIndex(min)
	if minIdx < 0 {
		return true
	}
	return RankIndex(rank) >= minIdx
}

// Race health modifiers. Anything not listed fights at 1.0.
var raceHealthMod = map[string]float64{
	"Orc":   1.10,
	"Golem": 1.25,
	"Pixie": 0.95,
}

// MaxHP computes a fighter's health pool from their stat block, rank
// position and race. Pure function; the arena calls it exactly once,
// at registration.
func MaxHP(s Stats, rankIndex int, race string) int {
	if rankIndex < 0 {
		rankIndex = 0
	}

	base := 150 + s.Strength*8 + s.Defense*6 + s.Speed*2 + rankIndex*40

	mod, ok := raceHealthMod[race]
	if !ok {
		mod = 1.0
	}

	hp := int(math.Floor(float64(base) * mod))
	if hp < 1 {
		hp = 1
	}
	return hp
}
