package database

import (
	"time"

	"brawlpit/stats"
)

type Account struct {
	ID        int       `db:"id"`
	DiscordID string    `db:"discord_id"`
	Username  string    `db:"username"`
	Race      string    `db:"race"`
	Rank      string    `db:"rank"`
	Strength  int       `db:"strength"`
	Defense   int       `db:"defense"`
	Speed     int       `db:"speed"`
	Intellect int       `db:"intellect"`
	Luck      int       `db:"luck"`
	Gold      int       `db:"gold"`
	Gems      int       `db:"gems"`
	RankPts   int       `db:"rank_points"`
	Relics    int       `db:"relics"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CombatStats packs the account's stat columns into the snapshot type
// the arena freezes at registration.
func (a *Account) CombatStats() stats.Stats {
	return stats.Stats{
		Strength:  a.Strength,
		Defense:   a.Defense,
		Speed:     a.Speed,
		Intellect: a.Intellect,
		Luck:      a.Luck,
	}
}

type Match struct {
	ID               int       `db:"id"`
	WinnerID         int       `db:"winner_id"`
	ParticipantCount int       `db:"participant_count"`
	StartedAt        time.Time `db:"started_at"`
	EndedAt          time.Time `db:"ended_at"`
	CreatedAt        time.Time `db:"created_at"`
}

type MatchResultRow struct {
	ID        int    `db:"id"`
	MatchID   int    `db:"match_id"`
	AccountID int    `db:"account_id"`
	Username  string `db:"username"`
	Placement int    `db:"placement"`
	Kills     int    `db:"kills"`
}

// MatchWithResults joins a match row with its per-participant outcomes
// for the history endpoint.
type MatchWithResults struct {
	Match
	Results []MatchResultRow `db:"-"`
}
