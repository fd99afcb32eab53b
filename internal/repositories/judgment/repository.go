// Package judgment defines the interface for action judgment persistence
package judgment

//go:generate mockgen -destination=mock/mock_repository.go -package=judgmentmock github.com/KirkDiggler/gm-api/internal/repositories/judgment Repository

import (
	"context"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// Repository defines the interface for judgment persistence. Judgments
// move forward through phases; superseded judgments are left behind at
// their old phase rather than rewound.
type Repository interface {
	// Create stores a new judgment and makes it the actor's current one
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a judgment by ID
	// Returns errors.NotFound if the judgment doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update overwrites an existing judgment
	// Returns errors.NotFound if the judgment doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// CurrentForActor retrieves the actor's most recently created judgment
	// in the room, regardless of phase
	// Returns errors.NotFound if the actor has none
	CurrentForActor(ctx context.Context, input CurrentForActorInput) (*CurrentForActorOutput, error)

	// ListByPhase retrieves the room's judgments at the given phase,
	// oldest first
	ListByPhase(ctx context.Context, input ListByPhaseInput) (*ListByPhaseOutput, error)

	// AdvancePhase moves every judgment in the room from one phase to
	// another in a single transaction, optionally linking a narrative.
	// Returns the judgments that were advanced.
	AdvancePhase(ctx context.Context, input AdvancePhaseInput) (*AdvancePhaseOutput, error)
}

// CreateInput defines the input for creating a judgment
type CreateInput struct {
	Judgment *game.Judgment
}

// CreateOutput defines the output for creating a judgment
type CreateOutput struct {
	Judgment *game.Judgment
}

// GetInput defines the input for getting a judgment
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a judgment
type GetOutput struct {
	Judgment *game.Judgment
}

// UpdateInput defines the input for updating a judgment
type UpdateInput struct {
	Judgment *game.Judgment
}

// UpdateOutput defines the output for updating a judgment
type UpdateOutput struct {
	Judgment *game.Judgment
}

// CurrentForActorInput defines the input for getting an actor's current judgment
type CurrentForActorInput struct {
	RoomID  string
	ActorID string
}

// CurrentForActorOutput defines the output for getting an actor's current judgment
type CurrentForActorOutput struct {
	Judgment *game.Judgment
}

// ListByPhaseInput defines the input for listing judgments by phase
type ListByPhaseInput struct {
	RoomID string
	Phase  game.Phase
}

// ListByPhaseOutput defines the output for listing judgments by phase
type ListByPhaseOutput struct {
	Judgments []*game.Judgment
}

// AdvancePhaseInput defines the input for a room-wide phase transition
type AdvancePhaseInput struct {
	RoomID string
	From   game.Phase
	To     game.Phase
	// NarrativeID, when set, is linked to each advanced judgment
	NarrativeID string
}

// AdvancePhaseOutput defines the output for a room-wide phase transition
type AdvancePhaseOutput struct {
	Judgments []*game.Judgment
}
