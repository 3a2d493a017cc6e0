package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankIndex(t *testing.T) {
	assert.Equal(t, 0, RankIndex("Wood"))
	assert.Equal(t, 3, RankIndex("Gold"))
	assert.Equal(t, 5, RankIndex("Warlord"))
	assert.Equal(t, -1, RankIndex("Cardboard"))
	assert.Equal(t, -1, RankIndex(""))
}

func TestRankAtLeast(t *testing.T) {
	assert.True(t, RankAtLeast("Silver", "Bronze"))
	assert.True(t, RankAtLeast("Silver", "Silver"))
	assert.False(t, RankAtLeast("Bronze", "Silver"))

	// An unknown player rank never passes a real gate
	assert.False(t, RankAtLeast("Cardboard", "Wood"))

	// An empty or unknown minimum disables the gate
	assert.True(t, RankAtLeast("Wood", ""))
	assert.True(t, RankAtLeast("Cardboard", "Nonsense"))
}

func TestMaxHP(t *testing.T) {
	s := Stats{Strength: 50, Defense: 10, Speed: 20, Intellect: 5, Luck: 5}

	// 150 + 50*8 + 10*6 + 20*2 + 3*40 = 770
	assert.Equal(t, 770, MaxHP(s, 3, "Human"))

	// Orc gets +10%, floored
	assert.Equal(t, 847, MaxHP(s, 3, "Orc"))

	// Pixie loses 5%
	assert.Equal(t, 731, MaxHP(s, 3, "Pixie"))

	// Unknown rank index is treated as the bottom of the ladder
	assert.Equal(t, MaxHP(s, 0, "Human"), MaxHP(s, -1, "Human"))
}

func TestMaxHPNeverBelowOne(t *testing.T) {
	s := Stats{Strength: -100, Defense: -100}
	assert.Equal(t, 1, MaxHP(s, 0, "Human"))
}
