package database

// Schema is applied on startup; every statement is idempotent so a
// restart against an existing database is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	discord_id TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL,
	race TEXT NOT NULL DEFAULT 'Human',
	rank TEXT NOT NULL DEFAULT 'Wood',
	strength INTEGER NOT NULL DEFAULT 10,
	defense INTEGER NOT NULL DEFAULT 10,
	speed INTEGER NOT NULL DEFAULT 10,
	intellect INTEGER NOT NULL DEFAULT 10,
	luck INTEGER NOT NULL DEFAULT 10,
	gold INTEGER NOT NULL DEFAULT 1000,
	gems INTEGER NOT NULL DEFAULT 0,
	rank_points INTEGER NOT NULL DEFAULT 0,
	relics INTEGER NOT NULL DEFAULT 0,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	winner_id INTEGER NOT NULL DEFAULT 0,
	participant_count INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS match_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id INTEGER NOT NULL REFERENCES matches(id),
	account_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	placement INTEGER NOT NULL,
	kills INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_match_results_match ON match_results(match_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expires_at);
`

// Migrate creates any missing tables.
func (r *Repository) Migrate() error {
	_, err := r.db.Exec(schema)
	return err
}
