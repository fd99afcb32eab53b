// Package room defines the interface for room persistence
package room

//go:generate mockgen -destination=mock/mock_repository.go -package=roommock github.com/KirkDiggler/gm-api/internal/repositories/room Repository

import (
	"context"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// Repository defines the interface for room persistence
type Repository interface {
	// Create stores a new room
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a room by ID
	// Returns errors.NotFound if the room doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update overwrites an existing room, keeping the active index in sync
	// Returns errors.NotFound if the room doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListActive retrieves every room currently open for play
	ListActive(ctx context.Context, input ListActiveInput) (*ListActiveOutput, error)

	// Delete removes a room
	// Returns errors.NotFound if the room doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating a room
type CreateInput struct {
	Room *game.Room
}

// CreateOutput defines the output for creating a room
type CreateOutput struct {
	Room *game.Room
}

// GetInput defines the input for getting a room
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a room
type GetOutput struct {
	Room *game.Room
}

// UpdateInput defines the input for updating a room
type UpdateInput struct {
	Room *game.Room
}

// UpdateOutput defines the output for updating a room
type UpdateOutput struct {
	Room *game.Room
}

// ListActiveInput defines the input for listing active rooms
type ListActiveInput struct{}

// ListActiveOutput defines the output for listing active rooms
type ListActiveOutput struct {
	Rooms []*game.Room
}

// DeleteInput defines the input for deleting a room
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a room
type DeleteOutput struct{}
