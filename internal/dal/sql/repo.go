package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vocalearn/backend/internal/dal"
)

const schema = `
CREATE TABLE IF NOT EXISTS lessons (
	lesson_id INTEGER PRIMARY KEY,
	course TEXT NOT NULL,
	name TEXT NOT NULL,
	lang TEXT NOT NULL,
	avail BOOLEAN NOT NULL DEFAULT FALSE,
	vocab_size INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lesson_vocab (
	lesson_id INTEGER NOT NULL,
	vocab_id INTEGER NOT NULL,
	word TEXT NOT NULL,
	meaning TEXT NOT NULL,
	PRIMARY KEY (lesson_id, vocab_id)
);

CREATE TABLE IF NOT EXISTS vocab_stats (
	username TEXT NOT NULL,
	lesson_id INTEGER NOT NULL,
	vocab_id INTEGER NOT NULL,
	review_correct INTEGER NOT NULL DEFAULT 0,
	review_total INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (username, lesson_id, vocab_id)
);

CREATE TABLE IF NOT EXISTS daily_activity (
	username TEXT NOT NULL,
	date TEXT NOT NULL,
	review_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (username, date)
);

CREATE TABLE IF NOT EXISTS accounts (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	permission TEXT NOT NULL DEFAULT 'user',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	username TEXT PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	score INTEGER NOT NULL DEFAULT 0
);
`

type (
	Client interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}

	Repository struct {
		db     *sql.DB
		client Client
		log    *slog.Logger
	}
)

func NewRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (*Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db, client: db, log: log}, nil
}

func (r *Repository) Transact(ctx context.Context, txFunc func(r dal.Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // ignore rollback errors

	if err = txFunc(&Repository{db: r.db, client: tx, log: r.log}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
