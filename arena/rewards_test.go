package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardTableCoversTopFiveOnly(t *testing.T) {
	for placement := 1; placement <= 5; placement++ {
		_, ok := RewardForPlacement(placement)
		assert.True(t, ok, "placement %d should be paid", placement)
	}

	_, ok := RewardForPlacement(6)
	assert.False(t, ok)
	_, ok = RewardForPlacement(0)
	assert.False(t, ok)
}

func TestRewardTableFirstPlaceIsStrictlyRichest(t *testing.T) {
	first, _ := RewardForPlacement(1)

	for placement := 2; placement <= 5; placement++ {
		b, _ := RewardForPlacement(placement)
		assert.Greater(t, first.Gold, b.Gold)
		assert.Greater(t, first.Gems, b.Gems)
		assert.Greater(t, first.RankPoints, b.RankPoints)
		// Relics are the champion's rare currency.
		assert.Zero(t, b.Relics)
	}
	assert.Positive(t, first.Relics)
}

func TestRewardTablePaysLessTheDeeperYouFinish(t *testing.T) {
	prev, _ := RewardForPlacement(1)
	for placement := 2; placement <= 5; placement++ {
		b, _ := RewardForPlacement(placement)
		assert.Less(t, b.Gold, prev.Gold)
		assert.LessOrEqual(t, b.Gems, prev.Gems)
		assert.Less(t, b.RankPoints, prev.RankPoints)
		prev = b
	}
}

// placedArena builds an ended arena with participants already holding
// placements, for exercising the distributor directly.
func placedArena(bank Bank, placements map[int]int) *Arena {
	a := New(fakeDirectory{}, bank, Config{})
	a.status = StatusEnded
	for id, placement := range placements {
		a.participants[id] = &Participant{
			AccountID:  id,
			Username:   "p",
			Placement:  placement,
			Eliminated: placement != 1,
		}
	}
	return a
}

func TestDistributeRewardsCapsAtFive(t *testing.T) {
	bank := newFakeBank()
	a := placedArena(bank, map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6, 7: 7})

	a.mu.Lock()
	a.distributeRewards()
	a.mu.Unlock()

	for id := 1; id <= 5; id++ {
		assert.Equal(t, 1, bank.grantCount(id), "placement %d gets paid", id)
	}
	assert.Zero(t, bank.grantCount(6))
	assert.Zero(t, bank.grantCount(7))
}

func TestDistributeRewardsRunsOnce(t *testing.T) {
	bank := newFakeBank()
	a := placedArena(bank, map[int]int{1: 1, 2: 2})

	a.mu.Lock()
	a.distributeRewards()
	a.distributeRewards()
	a.mu.Unlock()

	assert.Equal(t, 1, bank.grantCount(1))
	assert.Equal(t, 1, bank.grantCount(2))
}

func TestDistributeRewardsSkipsFailedAccounts(t *testing.T) {
	bank := newFakeBank()
	bank.failFor[2] = true
	a := placedArena(bank, map[int]int{1: 1, 2: 2, 3: 3})

	a.mu.Lock()
	a.distributeRewards()
	a.mu.Unlock()

	// A missing account is skipped, the rest of the batch still pays.
	assert.Equal(t, 1, bank.grantCount(1))
	assert.Zero(t, bank.grantCount(2))
	assert.Equal(t, 1, bank.grantCount(3))
}

func TestDistributeRewardsSharedPlacementPaysBoth(t *testing.T) {
	bank := newFakeBank()
	a := placedArena(bank, map[int]int{1: 1, 2: 3, 3: 3, 4: 5})

	a.mu.Lock()
	a.distributeRewards()
	a.mu.Unlock()

	third, _ := RewardForPlacement(3)
	require.Equal(t, 1, bank.grantCount(2))
	require.Equal(t, 1, bank.grantCount(3))
	assert.Equal(t, third, bank.grants[2][0])
	assert.Equal(t, third, bank.grants[3][0])
}
