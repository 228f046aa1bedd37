package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"wsconsole/internal/model"
)

var ErrEmptySession = errors.New("command without session id")

type SQLiteRepo struct {
	db *sql.DB
}

var _ CommandLog = (*SQLiteRepo)(nil)

func NewSQLiteRepo(dbPath string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &SQLiteRepo{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepo) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		remote_addr TEXT NOT NULL,
		text TEXT NOT NULL,
		received_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS commands_received_at ON commands(received_at);
	`
	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create commands table: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) SaveCommand(ctx context.Context, cmd *model.Command) (int64, error) {
	if cmd.SessionID == "" {
		return 0, ErrEmptySession
	}
	if cmd.ReceivedAt.IsZero() {
		cmd.ReceivedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO commands (session_id, remote_addr, text, received_at) VALUES (?, ?, ?, ?)`,
		cmd.SessionID, cmd.RemoteAddr, cmd.Text, cmd.ReceivedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to save command: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read command id: %w", err)
	}
	cmd.ID = id
	return id, nil
}

func (r *SQLiteRepo) RecentCommands(ctx context.Context, limit int) ([]model.Command, error) {
	query := `SELECT id, session_id, remote_addr, text, received_at FROM commands ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	defer rows.Close()

	var commands []model.Command
	for rows.Next() {
		var c model.Command
		if err := rows.Scan(&c.ID, &c.SessionID, &c.RemoteAddr, &c.Text, &c.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
