package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juceldev/ColoringBook/internal/generation"
	_ "modernc.org/sqlite"
)

type SQLiteHistory struct {
	db               *sql.DB
	connectionString string
	limit            int
}

func NewSQLiteHistory(connectionString string, limit int) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: opens its own empty database
	db.SetMaxOpenConns(1)

	return &SQLiteHistory{
		db:               db,
		connectionString: connectionString,
		limit:            limit,
	}, nil
}

func (s *SQLiteHistory) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		mode TEXT NOT NULL,
		results TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	return err
}

func (s *SQLiteHistory) Limit() int {
	return s.limit
}

func (s *SQLiteHistory) Add(ctx context.Context, item *Item) error {
	prepareItem(item)
	results, err := json.Marshal(item.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO history (id, prompt, mode, results, created_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.Prompt, string(item.Mode), string(results), item.CreatedAt.UnixNano())
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM history WHERE id NOT IN (
		SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
	)`, s.limit)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteHistory) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, prompt, mode, results, created_at FROM history ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteHistory) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, prompt, mode, results, created_at FROM history WHERE id = ?", id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (s *SQLiteHistory) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteHistory) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	return err
}

func (s *SQLiteHistory) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item      Item
		mode      string
		results   string
		createdAt int64
	)
	if err := row.Scan(&item.ID, &item.Prompt, &mode, &results, &createdAt); err != nil {
		return nil, err
	}
	item.Mode = generation.Mode(mode)
	item.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(results), &item.Results); err != nil {
		return nil, fmt.Errorf("corrupt results for history item %s: %w", item.ID, err)
	}
	return &item, nil
}
