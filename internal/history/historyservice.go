// Package history stores the most recent generation batches.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/juceldev/ColoringBook/internal/generation"
)

// DefaultLimit is the number of items kept when no limit is configured
const DefaultLimit = 10

// ErrNotFound is returned when deleting an item that does not exist
var ErrNotFound = errors.New("history item not found")

// Item is one generation batch as shown in the history list
type Item struct {
	ID        string              `json:"id"`
	Prompt    string              `json:"prompt"`
	Mode      generation.Mode     `json:"mode"`
	Results   []generation.Result `json:"results"`
	CreatedAt time.Time           `json:"createdAt"`
}

// HistoryService persists at most a fixed number of items, newest first
type HistoryService interface {
	CreateSchema(ctx context.Context) error
	// Add stores the item and drops the oldest items beyond the limit.
	// An empty ID or zero CreatedAt is filled in.
	Add(ctx context.Context, item *Item) error
	List(ctx context.Context) ([]*Item, error)
	// Get returns nil without error for an unknown id
	Get(ctx context.Context, id string) (*Item, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Limit() int
	Close() error
}

func prepareItem(item *Item) {
	if item.ID == "" {
		item.ID = generateID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Results == nil {
		item.Results = []generation.Result{}
	}
}
