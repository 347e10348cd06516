package state

import (
	"context"
	"time"
)

// Checkpoint : units that completed in the most recent failed run
type Checkpoint struct {
	RunID   string    `json:"run_id"`
	SavedAt time.Time `json:"saved_at"`
	Keys    []Key     `json:"keys"`
}

// Set : checkpoint keys as a set
func (c *Checkpoint) Set() Keys {
	return NewKeys(c.Keys...)
}

// Manager : durable storage for checkpoints. It does not interpret keys.
type Manager interface {
	// Load : nil with a nil error when no checkpoint exists. An error means the checkpoint
	// is unreadable, callers treat that like no checkpoint.
	Load(ctx context.Context) (*Checkpoint, error)
	// Save : replaces any existing checkpoint without leaving a partial copy behind
	Save(ctx context.Context, cp *Checkpoint) error
	// Clear : removes the checkpoint, not an error when none exists
	Clear(ctx context.Context) error
}

func currentTime() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
