// Package narrative defines the interface for narrative log persistence
package narrative

//go:generate mockgen -destination=mock/mock_repository.go -package=narrativemock github.com/KirkDiggler/gm-api/internal/repositories/narrative Repository

import (
	"context"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// Repository defines the interface for the append-only narrative log
type Repository interface {
	// Create appends an entry to the room's narrative log
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an entry by ID
	// Returns errors.NotFound if the entry doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListRecent retrieves the room's newest entries, oldest first.
	// Limit <= 0 returns the whole log.
	ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error)
}

// CreateInput defines the input for appending a narrative entry
type CreateInput struct {
	Entry *game.NarrativeEntry
}

// CreateOutput defines the output for appending a narrative entry
type CreateOutput struct {
	Entry *game.NarrativeEntry
}

// GetInput defines the input for getting a narrative entry
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a narrative entry
type GetOutput struct {
	Entry *game.NarrativeEntry
}

// ListRecentInput defines the input for listing recent entries
type ListRecentInput struct {
	RoomID string
	Limit  int
}

// ListRecentOutput defines the output for listing recent entries
type ListRecentOutput struct {
	Entries []*game.NarrativeEntry
}
