package arena

import (
	"time"

	"brawlpit/stats"
)

// Participant is an account frozen into the arena. Stats and MaxHP are
// snapshotted at registration; nothing outside the arena mutates them
// afterwards.
type Participant struct {
	AccountID    int         `json:"account_id"`
	Username     string      `json:"username"`
	Race         string      `json:"race"`
	Stats        stats.Stats `json:"stats"`
	HP           int         `json:"hp"`
	MaxHP        int         `json:"max_hp"`
	Kills        int         `json:"kills"`
	Eliminated   bool        `json:"eliminated"`
	EliminatedAt time.Time   `json:"eliminated_at,omitempty"`
	// Placement is 0 until assigned, then set exactly once. 1 = winner.
	Placement int `json:"placement"`
}

func (p *Participant) clone() *Participant {
	c := *p
	return &c
}

// Account is what the arena needs to know about an account at
// registration time. The database package satisfies Directory.
type Account struct {
	ID       int
	Username string
	Race     string
	Rank     string
	Stats    stats.Stats
}

// Directory is the account-lookup port.
type Directory interface {
	ArenaAccount(accountID int) (*Account, error)
}

// Bank is the currency-mutation port. GrantReward applies every delta
// in the bundle and returns the account's updated gold balance.
type Bank interface {
	GrantReward(accountID int, bundle RewardBundle) (int, error)
}
