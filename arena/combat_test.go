package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brawlpit/stats"
	"brawlpit/utils"
)

func TestResolveExchangeBaseDamage(t *testing.T) {
	rng := utils.NewSeededRNG(1)

	attacker := stats.Stats{Strength: 50, Defense: 10, Luck: 0}
	defender := stats.Stats{Strength: 30, Defense: 20}

	ex := ResolveExchange(attacker, defender, rng)

	// floor(50*2 - 20*0.5) = 90
	assert.Equal(t, 90, ex.Damage)
	assert.False(t, ex.Crit, "zero Luck must never crit")
	// floor((30 - 10*0.5) * 0.5) = 12
	assert.Equal(t, 12, ex.CounterDamage)
}

func TestResolveExchangeMinimumDamage(t *testing.T) {
	rng := utils.NewSeededRNG(1)

	attacker := stats.Stats{Strength: 1, Luck: 0}
	defender := stats.Stats{Defense: 100}

	ex := ResolveExchange(attacker, defender, rng)
	assert.Equal(t, 1, ex.Damage, "damage clamps at 1 even when mitigation swamps it")
}

func TestResolveExchangeFractionalDamageFloorsThenClamps(t *testing.T) {
	rng := utils.NewSeededRNG(1)

	// 10*2 - 39*0.5 = 0.5, floors to 0, clamps to 1
	attacker := stats.Stats{Strength: 10, Luck: 0}
	defender := stats.Stats{Defense: 39}

	ex := ResolveExchange(attacker, defender, rng)
	assert.Equal(t, 1, ex.Damage)
}

func TestResolveExchangeCounterNeverNegative(t *testing.T) {
	rng := utils.NewSeededRNG(1)

	attacker := stats.Stats{Strength: 50, Defense: 40, Luck: 0}
	defender := stats.Stats{Strength: 1}

	ex := ResolveExchange(attacker, defender, rng)
	assert.Equal(t, 0, ex.CounterDamage)
}

func TestResolveExchangeGuaranteedCrit(t *testing.T) {
	rng := utils.NewSeededRNG(1)

	// Luck 400 puts crit chance at 200%. Unclamped on purpose: it must
	// crit every single time.
	attacker := stats.Stats{Strength: 50, Luck: 400}
	defender := stats.Stats{Defense: 20}

	for i := 0; i < 100; i++ {
		ex := ResolveExchange(attacker, defender, rng)
		assert.True(t, ex.Crit)
		// floor((100 - 10) * 2) = 180
		assert.Equal(t, 180, ex.Damage)
	}
}

func TestResolveExchangeZeroLuckNeverCrits(t *testing.T) {
	rng := utils.NewSeededRNG(99)

	attacker := stats.Stats{Strength: 10, Luck: 0}
	defender := stats.Stats{}

	for i := 0; i < 1000; i++ {
		ex := ResolveExchange(attacker, defender, rng)
		assert.False(t, ex.Crit)
	}
}

func TestResolveExchangeCritRateTracksLuck(t *testing.T) {
	rng := utils.NewSeededRNG(42)

	// Luck 100 means 50% crits; over 10k rolls the rate should land
	// comfortably inside [0.45, 0.55].
	attacker := stats.Stats{Strength: 10, Luck: 100}
	defender := stats.Stats{}

	crits := 0
	const rolls = 10000
	for i := 0; i < rolls; i++ {
		if ResolveExchange(attacker, defender, rng).Crit {
			crits++
		}
	}

	rate := float64(crits) / rolls
	assert.InDelta(t, 0.5, rate, 0.05)
}
