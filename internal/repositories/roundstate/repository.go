// Package roundstate defines the interface for round readiness mirroring.
// The in-memory tracker is authoritative while the process lives; this
// repository is a best-effort mirror used to restore rounds after a
// restart.
package roundstate

//go:generate mockgen -destination=mock/mock_repository.go -package=roundstatemock github.com/KirkDiggler/gm-api/internal/repositories/roundstate Repository

import "context"

// State is one room's mirrored round: who still owes a roll and what
// everyone else rolled
type State struct {
	RoundID int64            `json:"round_id"`
	Pending []string         `json:"pending"`
	Rolled  map[string]int32 `json:"rolled"`
}

// Repository defines the interface for round state mirroring
type Repository interface {
	// Save overwrites the room's mirrored round state
	// Returns errors.InvalidArgument for validation failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Load retrieves the room's mirrored round state
	// Returns errors.NotFound if no round is mirrored for the room
	Load(ctx context.Context, input LoadInput) (*LoadOutput, error)

	// Clear drops the room's mirrored round state. Missing rooms are
	// not an error.
	Clear(ctx context.Context, input ClearInput) (*ClearOutput, error)
}

// SaveInput defines the input for mirroring a round
type SaveInput struct {
	RoomID string
	State  *State
}

// SaveOutput defines the output for mirroring a round
type SaveOutput struct{}

// LoadInput defines the input for loading a mirrored round
type LoadInput struct {
	RoomID string
}

// LoadOutput defines the output for loading a mirrored round
type LoadOutput struct {
	State *State
}

// ClearInput defines the input for clearing a mirrored round
type ClearInput struct {
	RoomID string
}

// ClearOutput defines the output for clearing a mirrored round
type ClearOutput struct{}
