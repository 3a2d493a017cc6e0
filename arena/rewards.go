package arena

import (
	"log"
	"sort"
)

// RewardBundle is one placement tier's payout. Every currency the game
// tracks gets a field here; applying a bundle means applying every
// field, zero or not.
type RewardBundle struct {
	Gold       int `json:"gold"`
	Gems       int `json:"gems"`
	RankPoints int `json:"rank_points"`
	Relics     int `json:"relics"`
}

// rewardTable pays the top five placements. First place gets the only
// bundle carrying relics and by far the richest totals.
var rewardTable = map[int]RewardBundle{
	1: {Gold: 10000, Gems: 250, RankPoints: 100, Relics: 3},
	2: {Gold: 5000, Gems: 100, RankPoints: 60},
	3: {Gold: 2500, Gems: 50, RankPoints: 40},
	4: {Gold: 1000, Gems: 25, RankPoints: 25},
	5: {Gold: 500, Gems: 10, RankPoints: 15},
}

// RewardForPlacement returns the bundle for a placement, if that
// placement is in the paid bracket.
func RewardForPlacement(placement int) (RewardBundle, bool) {
	b, ok := rewardTable[placement]
	return b, ok
}

// distributeRewards pays the top five placed participants through the
// bank, exactly once per match; the rewardsPaid guard makes a second
// call a no-op. Caller holds the arena lock. A missing or errored
// account is logged and skipped, never fatal to the rest of the batch.
// Returns deferred notification callbacks for the grants that landed.
func (a *Arena) distributeRewards() []func() {
	if a.rewardsPaid {
		return nil
	}
	a.rewardsPaid = true

	ranked := make([]*Participant, 0, len(a.participants))
	for _, p := range a.participants {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Placement != ranked[j].Placement {
			return ranked[i].Placement < ranked[j].Placement
		}
		return ranked[i].AccountID < ranked[j].AccountID
	})

	var fire []func()
	paid := 0
	for _, p := range ranked {
		if paid >= 5 {
			break
		}
		bundle, ok := rewardTable[p.Placement]
		if !ok {
			continue
		}
		paid++

		newGold, err := a.bank.GrantReward(p.AccountID, bundle)
		if err != nil {
			log.Printf("Reward payout failed for account %d (placement %d): %v", p.AccountID, p.Placement, err)
			continue
		}
		log.Printf("Paid placement %d reward to %s (gold now %d)", p.Placement, p.Username, newGold)

		if n := a.notifier; n != nil {
			accountID, placement := p.AccountID, p.Placement
			fire = append(fire, func() {
				n.RewardGranted(accountID, placement, bundle)
			})
		}
	}

	return fire
}
