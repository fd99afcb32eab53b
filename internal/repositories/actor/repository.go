// Package actor defines the interface for actor persistence
package actor

//go:generate mockgen -destination=mock/mock_repository.go -package=actormock github.com/KirkDiggler/gm-api/internal/repositories/actor Repository

import (
	"context"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// Repository defines the interface for actor persistence.
// One actor per player per room.
type Repository interface {
	// Create stores a new actor and indexes it under its room
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the player already has an actor in the room
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an actor by ID
	// Returns errors.NotFound if the actor doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetByPlayer retrieves the player's actor in a room
	// Returns errors.NotFound if the player has no actor there
	GetByPlayer(ctx context.Context, input GetByPlayerInput) (*GetByPlayerOutput, error)

	// ListByRoom retrieves every actor in a room
	ListByRoom(ctx context.Context, input ListByRoomInput) (*ListByRoomOutput, error)

	// Update overwrites an existing actor
	// Returns errors.NotFound if the actor doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes an actor and its room index entries
	// Returns errors.NotFound if the actor doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating an actor
type CreateInput struct {
	RoomID string
	Actor  *game.Actor
}

// CreateOutput defines the output for creating an actor
type CreateOutput struct {
	Actor *game.Actor
}

// GetInput defines the input for getting an actor
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an actor
type GetOutput struct {
	Actor *game.Actor
}

// GetByPlayerInput defines the input for getting a player's actor in a room
type GetByPlayerInput struct {
	RoomID   string
	PlayerID string
}

// GetByPlayerOutput defines the output for getting a player's actor
type GetByPlayerOutput struct {
	Actor *game.Actor
}

// ListByRoomInput defines the input for listing a room's actors
type ListByRoomInput struct {
	RoomID string
}

// ListByRoomOutput defines the output for listing a room's actors
type ListByRoomOutput struct {
	Actors []*game.Actor
}

// UpdateInput defines the input for updating an actor
type UpdateInput struct {
	Actor *game.Actor
}

// UpdateOutput defines the output for updating an actor
type UpdateOutput struct {
	Actor *game.Actor
}

// DeleteInput defines the input for deleting an actor
type DeleteInput struct {
	RoomID string
	ID     string
}

// DeleteOutput defines the output for deleting an actor
type DeleteOutput struct{}
