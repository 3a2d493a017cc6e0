package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"brawlpit/arena"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Account management

func (r *Repository) GetAccount(accountID int) (*Account, error) {
	var account Account
	err := r.db.Get(&account, "SELECT * FROM accounts WHERE id = ?", accountID)
	return &account, err
}

func (r *Repository) GetAccountByDiscordID(discordID string) (*Account, error) {
	var account Account
	err := r.db.Get(&account, "SELECT * FROM accounts WHERE discord_id = ?", discordID)
	return &account, err
}

func (r *Repository) GetAccountByUsername(username string) (*Account, error) {
	var account Account
	err := r.db.Get(&account, "SELECT * FROM accounts WHERE username = ?", username)
	return &account, err
}

func (r *Repository) CreateAccount(discordID, username, race string) (*Account, error) {
	result, err := r.db.Exec(`
		INSERT INTO accounts (discord_id, username, race)
		VALUES (?, ?, ?)`,
		discordID, username, race)
	if err != nil {
		return nil, err
	}

	accountID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	var account Account
	err = r.db.Get(&account, "SELECT * FROM accounts WHERE id = ?", accountID)
	return &account, err
}

func (r *Repository) GetAllAccountsByGold() ([]Account, error) {
	var accounts []Account
	err := r.db.Select(&accounts, "SELECT * FROM accounts ORDER BY gold DESC, created_at ASC")
	return accounts, err
}

// TopUpAccountsToMinimum raises every account's gold to at least min.
// Idempotent; safe to run from the background ticker.
func (r *Repository) TopUpAccountsToMinimum(min int) error {
	_, err := r.db.Exec("UPDATE accounts SET gold = ?, updated_at = datetime('now') WHERE gold < ?", min, min)
	return err
}

// Arena ports. The arena core only sees these, never the full Account.

// ArenaAccount satisfies arena.Directory.
func (r *Repository) ArenaAccount(accountID int) (*arena.Account, error) {
	account, err := r.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	return &arena.Account{
		ID:       account.ID,
		Username: account.Username,
		Race:     account.Race,
		Rank:     account.Rank,
		Stats:    account.CombatStats(),
	}, nil
}

// GrantReward satisfies arena.Bank: applies every delta in the bundle
// inside one transaction and returns the updated gold balance.
func (r *Repository) GrantReward(accountID int, bundle arena.RewardBundle) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE accounts
		SET gold = gold + ?,
			gems = gems + ?,
			rank_points = rank_points + ?,
			relics = relics + ?,
			updated_at = datetime('now')
		WHERE id = ?`,
		bundle.Gold, bundle.Gems, bundle.RankPoints, bundle.Relics, accountID)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, fmt.Errorf("account %d does not exist", accountID)
	}

	var gold int
	if err := tx.Get(&gold, "SELECT gold FROM accounts WHERE id = ?", accountID); err != nil {
		return 0, err
	}

	return gold, tx.Commit()
}

// RecordMatch satisfies arena.MatchRecorder: one match row plus one
// result row per participant, committed together.
func (r *Repository) RecordMatch(result arena.MatchResult) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO matches (winner_id, participant_count, started_at, ended_at)
		VALUES (?, ?, ?, ?)`,
		result.WinnerID, result.ParticipantCount, result.StartedAt, result.EndedAt)
	if err != nil {
		return err
	}

	matchID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, p := range result.Results {
		_, err = tx.Exec(`
			INSERT INTO match_results (match_id, account_id, username, placement, kills)
			VALUES (?, ?, ?, ?, ?)`,
			matchID, p.AccountID, p.Username, p.Placement, p.Kills)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Match history

func (r *Repository) GetRecentMatches(limit int) ([]MatchWithResults, error) {
	var matches []Match
	err := r.db.Select(&matches, "SELECT * FROM matches ORDER BY ended_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}

	out := make([]MatchWithResults, 0, len(matches))
	for _, m := range matches {
		var results []MatchResultRow
		err = r.db.Select(&results,
			"SELECT * FROM match_results WHERE match_id = ? ORDER BY placement ASC", m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, MatchWithResults{Match: m, Results: results})
	}
	return out, nil
}

// Session management

func (r *Repository) CreateSession(token string, accountID int, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (token, account_id, expires_at)
		VALUES (?, ?, ?)`,
		token, accountID, expiresAt)
	return err
}

func (r *Repository) GetAccountBySessionToken(token string) (*Account, error) {
	var account Account
	err := r.db.Get(&account, `
		SELECT a.* FROM accounts a
		JOIN sessions s ON a.id = s.account_id
		WHERE s.token = ? AND s.expires_at > datetime('now')`,
		token)
	return &account, err
}

func (r *Repository) DeleteSession(token string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

func (r *Repository) CleanExpiredSessions() error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= datetime('now')")
	return err
}
