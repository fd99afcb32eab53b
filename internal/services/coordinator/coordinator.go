// Package coordinator routes player requests into the turn orchestrator
// and fans results back out to connected clients with three addressing
// modes: the submitter alone, the room minus the submitter, or the whole
// room.
package coordinator

//go:generate mockgen -destination=mock/mock_broadcaster.go -package=coordinatormock github.com/KirkDiggler/gm-api/internal/services/coordinator Broadcaster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/orchestrators/turn"
	"github.com/KirkDiggler/gm-api/internal/repositories/actor"
	"github.com/KirkDiggler/gm-api/internal/repositories/room"
	"github.com/KirkDiggler/gm-api/internal/tasks"
)

// narrationTimeout bounds one narration replay, pacing included
const narrationTimeout = 5 * time.Minute

// Broadcaster delivers events to connected clients. Implemented by the
// websocket hub.
type Broadcaster interface {
	// ToClient sends to one connection
	ToClient(clientID, event string, payload any)
	// ToRoom sends to every connection in the room
	ToRoom(roomID, event string, payload any)
	// ToRoomExcept sends to every connection in the room but one
	ToRoomExcept(roomID, exceptClientID, event string, payload any)
}

// Config holds the dependencies for the coordinator
type Config struct {
	Turn        turn.Service
	Supervisor  *tasks.Supervisor
	Broadcaster Broadcaster
	RoomRepo    room.Repository
	ActorRepo   actor.Repository
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Turn == nil {
		vb.RequiredField("Turn")
	}
	if c.Supervisor == nil {
		vb.RequiredField("Supervisor")
	}
	if c.Broadcaster == nil {
		vb.RequiredField("Broadcaster")
	}
	if c.RoomRepo == nil {
		vb.RequiredField("RoomRepo")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}

	return vb.Build()
}

// Coordinator is the room-level request dispatcher
type Coordinator struct {
	turn       turn.Service
	supervisor *tasks.Supervisor
	broadcast  Broadcaster
	roomRepo   room.Repository
	actorRepo  actor.Repository

	// mu guards streaming, the per-room narration-in-flight flags
	mu        sync.Mutex
	streaming map[string]bool
}

// New creates a coordinator
func New(cfg *Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Coordinator{
		turn:       cfg.Turn,
		supervisor: cfg.Supervisor,
		broadcast:  cfg.Broadcaster,
		roomRepo:   cfg.RoomRepo,
		actorRepo:  cfg.ActorRepo,
		streaming:  make(map[string]bool),
	}, nil
}

// JoinRoom admits a player's connection to an active room, restoring any
// mirrored round state on the way in
func (c *Coordinator) JoinRoom(ctx context.Context, clientID, roomID, playerID string) error {
	roomOut, err := c.roomRepo.Get(ctx, room.GetInput{ID: roomID})
	if err != nil {
		c.broadcast.ToClient(clientID, EventError, ErrorPayload{RoomID: roomID, Message: "room not found"})
		return err
	}
	if !roomOut.Room.IsActive {
		c.broadcast.ToClient(clientID, EventError, ErrorPayload{RoomID: roomID, Message: "room is closed"})
		return errors.FailedPreconditionf("room %s is not active", roomID)
	}

	if _, err := c.turn.RestoreRound(ctx, &turn.RestoreRoundInput{RoomID: roomID}); err != nil {
		slog.Warn("failed to restore round on join", "room_id", roomID, "error", err)
	}

	payload := PresencePayload{RoomID: roomID, PlayerID: playerID}
	if actorOut, err := c.actorRepo.GetByPlayer(ctx, actor.GetByPlayerInput{
		RoomID: roomID, PlayerID: playerID,
	}); err == nil {
		payload.ActorID = actorOut.Actor.ID
	}

	c.broadcast.ToRoomExcept(roomID, clientID, EventPlayerJoined, payload)
	return nil
}

// LeaveRoom handles a player leaving mid-round: their pending action is
// discarded, and if the rest of the party was only waiting on them the
// narration starts. remaining is how many connections are left in the
// room after this one.
func (c *Coordinator) LeaveRoom(ctx context.Context, roomID, playerID string, remaining int) {
	payload := PresencePayload{RoomID: roomID, PlayerID: playerID}

	actorOut, err := c.actorRepo.GetByPlayer(ctx, actor.GetByPlayerInput{
		RoomID: roomID, PlayerID: playerID,
	})
	if err == nil {
		payload.ActorID = actorOut.Actor.ID
		discarded, err := c.turn.DiscardActor(ctx, &turn.DiscardActorInput{
			RoomID:  roomID,
			ActorID: actorOut.Actor.ID,
		})
		if err != nil {
			slog.Warn("failed to discard leaving actor", "room_id", roomID, "error", err)
		} else if discarded.AllReady {
			c.StartNarration(roomID)
		}
	}

	c.broadcast.ToRoom(roomID, EventPlayerLeft, payload)

	roomOut, err := c.roomRepo.Get(ctx, room.GetInput{ID: roomID})
	if err != nil {
		return
	}

	switch {
	case roomOut.Room.HostID == playerID:
		c.closeRoom(ctx, roomOut.Room, "host_left")
	case remaining <= 0:
		c.closeRoom(ctx, roomOut.Room, "no_participants")
	}
}

func (c *Coordinator) closeRoom(ctx context.Context, rm *game.Room, reason string) {
	rm.IsActive = false
	if _, err := c.roomRepo.Update(ctx, room.UpdateInput{Room: rm}); err != nil {
		slog.Error("failed to close room", "room_id", rm.ID, "error", err)
		return
	}
	c.supervisor.Stop(rm.ID)
	c.broadcast.ToRoom(rm.ID, EventRoomClosed, RoomClosedPayload{RoomID: rm.ID, Reason: reason})
	slog.Info("room closed", "room_id", rm.ID, "reason", reason)
}

// SubmitAction runs the analysis phase for one declared action, joining
// the room's current round. The submitter gets the judgment without the
// die; everyone else sees the action was analyzed. preRoll false defers
// the die to an explicit RollDie.
func (c *Coordinator) SubmitAction(ctx context.Context, clientID, roomID, actorID, actionText string, actionType game.ActionType, preRoll bool) {
	out, err := c.turn.AnalyzeActions(ctx, &turn.AnalyzeActionsInput{
		RoomID: roomID,
		Actions: []turn.ActionSubmission{
			{ActorID: actorID, ActionText: actionText, ActionType: actionType},
		},
		PreRoll: preRoll,
	})
	if err != nil {
		c.broadcast.ToClient(clientID, EventActionAnalysisError, ErrorPayload{
			RoomID: roomID, Message: err.Error(),
		})
		return
	}

	j := out.Judgments[0]
	actorName := actorID
	if actorOut, err := c.actorRepo.Get(ctx, actor.GetInput{ID: actorID}); err == nil {
		actorName = actorOut.Actor.Name
	}

	// the die stays hidden until the player confirms
	c.broadcast.ToClient(clientID, EventJudgmentReady, JudgmentReadyPayload{
		RoomID:              roomID,
		ActorID:             actorID,
		JudgmentID:          j.ID,
		ActionText:          j.ActionText,
		Modifier:            j.Modifier,
		Difficulty:          j.Difficulty,
		DifficultyReasoning: j.DifficultyReasoning,
	})
	c.broadcast.ToRoomExcept(roomID, clientID, EventPlayerActionAnalyzed, ActionAnalyzedPayload{
		RoomID:     roomID,
		ActorID:    actorID,
		ActorName:  actorName,
		JudgmentID: j.ID,
		ActionText: j.ActionText,
		Modifier:   j.Modifier,
		Difficulty: j.Difficulty,
	})
}

// CommitActions runs the analysis phase for a batch of declared actions
// at once, the host's path for committing a queued round. Each actor's
// judgment goes to that actor's player without the die; the analyzed
// summaries go to the whole room.
func (c *Coordinator) CommitActions(ctx context.Context, clientID, roomID string, actions []turn.ActionSubmission) {
	out, err := c.turn.AnalyzeActions(ctx, &turn.AnalyzeActionsInput{
		RoomID:     roomID,
		Actions:    actions,
		PreRoll:    true,
		FreshRound: true,
	})
	if err != nil {
		c.broadcast.ToClient(clientID, EventActionAnalysisError, ErrorPayload{
			RoomID: roomID, Message: err.Error(),
		})
		return
	}

	for _, j := range out.Judgments {
		actorName := j.ActorID
		playerID := ""
		if actorOut, err := c.actorRepo.Get(ctx, actor.GetInput{ID: j.ActorID}); err == nil {
			actorName = actorOut.Actor.Name
			playerID = actorOut.Actor.PlayerID
		}

		if playerID != "" {
			c.broadcast.ToClient(playerID, EventJudgmentReady, JudgmentReadyPayload{
				RoomID:              roomID,
				ActorID:             j.ActorID,
				JudgmentID:          j.ID,
				ActionText:          j.ActionText,
				Modifier:            j.Modifier,
				Difficulty:          j.Difficulty,
				DifficultyReasoning: j.DifficultyReasoning,
			})
		}
		c.broadcast.ToRoom(roomID, EventPlayerActionAnalyzed, ActionAnalyzedPayload{
			RoomID:     roomID,
			ActorID:    j.ActorID,
			ActorName:  actorName,
			JudgmentID: j.ID,
			ActionText: j.ActionText,
			Modifier:   j.Modifier,
			Difficulty: j.Difficulty,
		})
	}
}

// ConfirmRoll reveals the submitter's pre-rolled die to the whole room
// and kicks off narration when the last holdout confirms
func (c *Coordinator) ConfirmRoll(ctx context.Context, clientID, roomID, actorID string) {
	out, err := c.turn.ConfirmRoll(ctx, &turn.ConfirmRollInput{
		RoomID:  roomID,
		ActorID: actorID,
	})
	if err != nil {
		c.broadcast.ToClient(clientID, EventDiceRollError, ErrorPayload{
			RoomID: roomID, Message: err.Error(),
		})
		return
	}

	c.broadcastReveal(ctx, roomID, out.Judgment)

	if out.AllReady {
		c.broadcast.ToRoom(roomID, EventAllDiceRolled, map[string]string{"room_id": roomID})
		c.StartNarration(roomID)
	}
}

// RollDie draws and reveals the die for a judgment that skipped the
// pre-roll
func (c *Coordinator) RollDie(ctx context.Context, clientID, roomID, actorID string) {
	out, err := c.turn.RollDie(ctx, &turn.RollDieInput{
		RoomID:  roomID,
		ActorID: actorID,
	})
	if err != nil {
		c.broadcast.ToClient(clientID, EventDiceRollError, ErrorPayload{
			RoomID: roomID, Message: err.Error(),
		})
		return
	}

	c.broadcastReveal(ctx, roomID, out.Judgment)

	if out.AllReady {
		c.broadcast.ToRoom(roomID, EventAllDiceRolled, map[string]string{"room_id": roomID})
		c.StartNarration(roomID)
	}
}

func (c *Coordinator) broadcastReveal(ctx context.Context, roomID string, j *game.Judgment) {
	actorName := j.ActorID
	if actorOut, err := c.actorRepo.Get(ctx, actor.GetInput{ID: j.ActorID}); err == nil {
		actorName = actorOut.Actor.Name
	}

	payload := DiceRolledPayload{
		RoomID:           roomID,
		ActorID:          j.ActorID,
		ActorName:        actorName,
		JudgmentID:       j.ID,
		Modifier:         j.Modifier,
		Difficulty:       j.Difficulty,
		Outcome:          string(j.Outcome),
		OutcomeReasoning: j.OutcomeReasoning,
	}
	if j.DieResult != nil {
		payload.DieResult = *j.DieResult
	}
	if j.FinalValue != nil {
		payload.FinalValue = *j.FinalValue
	}

	c.broadcast.ToRoom(roomID, EventDiceRolled, payload)
}

// StartNarration launches the narration replay for the room. At most one
// narration runs per room; a second trigger while one is in flight is
// rejected.
func (c *Coordinator) StartNarration(roomID string) {
	c.mu.Lock()
	if c.streaming[roomID] {
		c.mu.Unlock()
		slog.Info("narration already in flight", "room_id", roomID)
		return
	}
	c.streaming[roomID] = true
	c.mu.Unlock()

	go c.runNarration(roomID)
}

// runNarration paces the pre-generated prose out to the room. It runs in
// its own goroutine, detached from any client's context, and outside the
// room's supervised slot, which the generation producer occupies.
func (c *Coordinator) runNarration(roomID string) {
	defer func() {
		c.mu.Lock()
		delete(c.streaming, roomID)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), narrationTimeout)
	defer cancel()

	c.broadcast.ToRoom(roomID, EventNarrativeStreamStarted, map[string]string{"room_id": roomID})

	out, err := c.turn.StreamNarrative(ctx, &turn.StreamNarrativeInput{
		RoomID: roomID,
		Sink: func(token string) error {
			c.broadcast.ToRoom(roomID, EventNarrativeToken, NarrativeTokenPayload{
				RoomID: roomID, Token: token,
			})
			return nil
		},
	})
	if err != nil {
		// the players keep their revealed rolls; the failure is the
		// host's to act on, not table-wide noise. The notify lookup gets
		// a detached context since ours may be the thing that expired.
		slog.Error("narration failed", "room_id", roomID, "error", err)
		c.notifyHost(context.WithoutCancel(ctx), roomID, "narration failed: "+errors.GetMessage(err))
		return
	}

	c.broadcast.ToRoom(roomID, EventNarrativeComplete, NarrativeCompletePayload{
		RoomID:      roomID,
		NarrativeID: out.NarrativeID,
		Truncated:   out.Truncated,
	})

	// the prose reached the players; only the host needs to know the
	// log write failed
	if !out.Persisted {
		c.notifyHost(ctx, roomID, "narrative was streamed but could not be saved")
	}
}

// TriggerNarration is the manual path for when auto-trigger was missed,
// guarded the same way. Only the host may use it.
func (c *Coordinator) TriggerNarration(ctx context.Context, clientID, roomID, playerID string) {
	roomOut, err := c.roomRepo.Get(ctx, room.GetInput{ID: roomID})
	if err != nil {
		c.broadcast.ToClient(clientID, EventError, ErrorPayload{
			RoomID: roomID, Message: errors.GetMessage(err),
		})
		return
	}
	if roomOut.Room.HostID != playerID {
		denied := errors.PermissionDenied("only the host can trigger narration")
		c.broadcast.ToClient(clientID, EventError, ErrorPayload{
			RoomID: roomID, Message: denied.Message,
		})
		return
	}

	c.mu.Lock()
	inFlight := c.streaming[roomID]
	c.mu.Unlock()

	if inFlight {
		c.broadcast.ToClient(clientID, EventError, ErrorPayload{
			RoomID: roomID, Message: "narration already in progress",
		})
		return
	}
	c.StartNarration(roomID)
}

// Chat relays table talk to the whole room
func (c *Coordinator) Chat(roomID, playerID, message string) {
	c.broadcast.ToRoom(roomID, EventChatMessage, ChatPayload{
		RoomID:   roomID,
		PlayerID: playerID,
		Message:  message,
	})
}

// Streaming reports whether the room has a narration in flight
func (c *Coordinator) Streaming(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming[roomID]
}

func (c *Coordinator) notifyHost(ctx context.Context, roomID, message string) {
	roomOut, err := c.roomRepo.Get(ctx, room.GetInput{ID: roomID})
	if err != nil {
		return
	}
	c.broadcast.ToClient(roomOut.Room.HostID, EventNarrativeError, ErrorPayload{
		RoomID: roomID, Message: message,
	})
}
