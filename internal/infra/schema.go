package infra

// Both schemas carry the same invariants: usernames and emails are unique,
// every entry references its owning user, amounts are positive.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users (id),
		kind       TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		amount     NUMERIC NOT NULL CHECK (amount > 0),
		note       TEXT NOT NULL DEFAULT '',
		entry_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS entries_user_date_idx ON entries (user_id, entry_date DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id),
		kind       TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		amount     TEXT NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS entries_user_date_idx ON entries (user_id, entry_date DESC)`,
}
