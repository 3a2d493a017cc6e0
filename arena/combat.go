package arena

import (
	"math"
	"math/rand"

	"brawlpit/stats"
)

// Exchange is one simultaneous trade of blows: the attacker's damage
// (possibly critical) and the defender's retaliation, resolved from a
// single random source. It is not two separate attacks.
type Exchange struct {
	Damage        int
	Crit          bool
	CounterDamage int
}

// ResolveExchange is the pure combat resolver.
//
// Crit chance is Luck/200 and deliberately unclamped: extreme Luck
// values can push it past 50% and beyond, and that's the intended
// behavior, not an overflow to guard against.
func ResolveExchange(attacker, defender stats.Stats, rng *rand.Rand) Exchange {
	baseDamage := float64(attacker.Strength) * 2
	mitigation := float64(defender.Defense) * 0.5

	critChance := float64(attacker.Luck) / 200
	crit := rng.Float64() < critChance

	damage := baseDamage - mitigation
	if crit {
		damage *= 2
	}
	dealt := int(math.Floor(damage))
	if dealt < 1 {
		dealt = 1
	}

	counterBase := float64(defender.Strength) - float64(attacker.Defense)*0.5
	counter := int(math.Floor(counterBase * 0.5))
	if counter < 0 {
		counter = 0
	}

	return Exchange{
		Damage:        dealt,
		Crit:          crit,
		CounterDamage: counter,
	}
}
