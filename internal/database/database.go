package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// Connect opens the connection pool and verifies it with a ping
func Connect(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var err error
	Pool, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := Pool.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connected successfully using PGX")
	return nil
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context) error {
	if _, err := Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	profile_picture TEXT NOT NULL DEFAULT './images/profile.jpg',
	bio             TEXT NOT NULL DEFAULT '',
	last_seen       TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- One row per (user, counterpart) holds that user's side of the
-- relationship. The primary key keeps each side in exactly one state.
CREATE TABLE IF NOT EXISTS user_relations (
	user_id  UUID NOT NULL REFERENCES users(id),
	other_id UUID NOT NULL REFERENCES users(id),
	rel      TEXT NOT NULL CHECK (rel IN ('friend', 'incoming', 'outgoing')),
	PRIMARY KEY (user_id, other_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	sender_id          UUID NOT NULL REFERENCES users(id),
	recipient_id       UUID NOT NULL REFERENCES users(id),
	content            TEXT NOT NULL,
	read               BOOLEAN NOT NULL DEFAULT FALSE,
	file_name          TEXT,
	file_original_name TEXT,
	file_type          TEXT,
	file_size          BIGINT,
	file_url           TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages (sender_id, recipient_id, created_at);

CREATE TABLE IF NOT EXISTS groups (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	picture     TEXT NOT NULL DEFAULT '/images/group_pictures/default_group_pic.png',
	creator_id  UUID NOT NULL REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id  UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	user_id   UUID NOT NULL REFERENCES users(id),
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS group_messages (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	group_id           UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	sender_id          UUID NOT NULL REFERENCES users(id),
	content            TEXT NOT NULL,
	file_name          TEXT,
	file_original_name TEXT,
	file_type          TEXT,
	file_size          BIGINT,
	file_url           TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_group_messages_group
	ON group_messages (group_id, created_at);
`
