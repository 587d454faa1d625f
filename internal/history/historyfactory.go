package history

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

// NewHistory opens the configured backend and makes sure its schema exists
func NewHistory(ctx context.Context, historyType, connectionString string, limit int) (history HistoryService, err error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch historyType {
	case TypeSQLite:
		history, err = NewSQLiteHistory(connectionString, limit)
	case TypeRedis:
		history, err = NewRedisHistory(connectionString, limit)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", historyType)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("initializing history schema", "type", historyType, "limit", limit)
	if err = history.CreateSchema(ctx); err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return history, nil
}
