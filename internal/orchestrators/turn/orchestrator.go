// Package turn implements the three-phase turn orchestrator: actions are
// analyzed and pre-rolled, players confirm their rolls, and a narrator
// streams the round's prose once everyone is ready.
package turn

//go:generate mockgen -destination=mock/mock_service.go -package=turnmock github.com/KirkDiggler/gm-api/internal/orchestrators/turn Service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/gm-api/internal/ai"
	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/pkg/clock"
	"github.com/KirkDiggler/gm-api/internal/pkg/idgen"
	"github.com/KirkDiggler/gm-api/internal/repositories/actor"
	"github.com/KirkDiggler/gm-api/internal/repositories/judgment"
	"github.com/KirkDiggler/gm-api/internal/repositories/narrative"
	"github.com/KirkDiggler/gm-api/internal/repositories/room"
	"github.com/KirkDiggler/gm-api/internal/repositories/roundstate"
	"github.com/KirkDiggler/gm-api/internal/rounds"
	"github.com/KirkDiggler/gm-api/internal/rules"
	"github.com/KirkDiggler/gm-api/internal/stream"
	"github.com/KirkDiggler/gm-api/internal/tasks"
)

const (
	// DefaultTokenPace spaces released tokens about 20 per second
	DefaultTokenPace = 50 * time.Millisecond

	// DefaultPollInterval is how often the consumer checks the buffer
	// for new tokens
	DefaultPollInterval = 100 * time.Millisecond

	// historyLimit bounds how many narrative entries feed the prompts
	historyLimit = 5

	// maxActionTextChars bounds a single declared action
	maxActionTextChars = 2000

	// narrateTaskName labels the supervised producer in logs
	narrateTaskName = "narrate"
)

// Service defines the interface for turn operations
type Service interface {
	// AnalyzeActions judges a batch of declared actions, computes
	// modifiers, and pre-rolls each actor's die. In the pre-roll flow it
	// also kicks off narration generation in the background, so the
	// prose is ready by the time the last player confirms.
	AnalyzeActions(ctx context.Context, input *AnalyzeActionsInput) (*AnalyzeActionsOutput, error)

	// RollDie draws the die for an analyzed judgment that skipped the
	// pre-roll, resolving it immediately
	RollDie(ctx context.Context, input *RollDieInput) (*RollDieOutput, error)

	// ConfirmRoll reveals an actor's pre-rolled result and marks them
	// ready for narration
	ConfirmRoll(ctx context.Context, input *ConfirmRollInput) (*ConfirmRollOutput, error)

	// StreamNarrative replays the pre-generated narration for the room's
	// confirmed judgments, pacing tokens to the sink, then persists the
	// entry and closes the round. When no generation is in flight it
	// falls back to a direct narrator call.
	StreamNarrative(ctx context.Context, input *StreamNarrativeInput) (*StreamNarrativeOutput, error)

	// DiscardActor drops a leaving actor from the round so the rest of
	// the party is not blocked waiting on them
	DiscardActor(ctx context.Context, input *DiscardActorInput) (*DiscardActorOutput, error)

	// RoundStatus reports the room's readiness counts
	RoundStatus(ctx context.Context, input *RoundStatusInput) (*RoundStatusOutput, error)

	// RestoreRound reloads a room's round from its persisted mirror,
	// used after a restart
	RestoreRound(ctx context.Context, input *RestoreRoundInput) (*RestoreRoundOutput, error)
}

// Config holds the dependencies for the turn orchestrator
type Config struct {
	RoomRepo       room.Repository
	ActorRepo      actor.Repository
	JudgmentRepo   judgment.Repository
	NarrativeRepo  narrative.Repository
	RoundStateRepo roundstate.Repository

	Judge    ai.Judge
	Narrator ai.Narrator

	Streams    *stream.Registry
	Tracker    *rounds.Tracker
	Supervisor *tasks.Supervisor
	Roller     rules.Roller

	JudgmentIDGen  idgen.Generator
	NarrativeIDGen idgen.Generator
	Clock          clock.Clock

	// TokenPace and PollInterval default when zero
	TokenPace    time.Duration
	PollInterval time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.RoomRepo == nil {
		vb.RequiredField("RoomRepo")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}
	if c.JudgmentRepo == nil {
		vb.RequiredField("JudgmentRepo")
	}
	if c.NarrativeRepo == nil {
		vb.RequiredField("NarrativeRepo")
	}
	if c.RoundStateRepo == nil {
		vb.RequiredField("RoundStateRepo")
	}
	if c.Judge == nil {
		vb.RequiredField("Judge")
	}
	if c.Narrator == nil {
		vb.RequiredField("Narrator")
	}
	if c.Streams == nil {
		vb.RequiredField("Streams")
	}
	if c.Tracker == nil {
		vb.RequiredField("Tracker")
	}
	if c.Supervisor == nil {
		vb.RequiredField("Supervisor")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.JudgmentIDGen == nil {
		vb.RequiredField("JudgmentIDGen")
	}
	if c.NarrativeIDGen == nil {
		vb.RequiredField("NarrativeIDGen")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	roomRepo       room.Repository
	actorRepo      actor.Repository
	judgmentRepo   judgment.Repository
	narrativeRepo  narrative.Repository
	roundStateRepo roundstate.Repository

	judge    ai.Judge
	narrator ai.Narrator

	streams    *stream.Registry
	tracker    *rounds.Tracker
	supervisor *tasks.Supervisor
	roller     rules.Roller

	judgmentIDGen  idgen.Generator
	narrativeIDGen idgen.Generator
	clk            clock.Clock

	tokenPace    time.Duration
	pollInterval time.Duration
}

// NewOrchestrator creates a new turn orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	tokenPace := cfg.TokenPace
	if tokenPace == 0 {
		tokenPace = DefaultTokenPace
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	return &orchestrator{
		roomRepo:       cfg.RoomRepo,
		actorRepo:      cfg.ActorRepo,
		judgmentRepo:   cfg.JudgmentRepo,
		narrativeRepo:  cfg.NarrativeRepo,
		roundStateRepo: cfg.RoundStateRepo,
		judge:          cfg.Judge,
		narrator:       cfg.Narrator,
		streams:        cfg.Streams,
		tracker:        cfg.Tracker,
		supervisor:     cfg.Supervisor,
		roller:         cfg.Roller,
		judgmentIDGen:  cfg.JudgmentIDGen,
		narrativeIDGen: cfg.NarrativeIDGen,
		clk:            cfg.Clock,
		tokenPace:      tokenPace,
		pollInterval:   pollInterval,
	}, nil
}

func (o *orchestrator) AnalyzeActions(ctx context.Context, input *AnalyzeActionsInput) (*AnalyzeActionsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}
	if len(input.Actions) == 0 {
		return nil, errors.InvalidArgument("at least one action is required")
	}
	vb := errors.NewValidationBuilder()
	for i, a := range input.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		if !a.ActionType.Valid() {
			vb.InvalidField(field+".action_type", string(a.ActionType))
		}
		errors.ValidateRequired(field+".action_text", a.ActionText, vb)
		errors.ValidateMaxLength(field+".action_text", a.ActionText, maxActionTextChars, vb)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	roomOut, err := o.roomRepo.Get(ctx, room.GetInput{ID: input.RoomID})
	if err != nil {
		return nil, err
	}

	actorsOut, err := o.actorRepo.ListByRoom(ctx, actor.ListByRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}
	actorByID := make(map[string]*game.Actor, len(actorsOut.Actors))
	for _, a := range actorsOut.Actors {
		actorByID[a.ID] = a
	}

	// actions from actors no longer in the room are dropped, matching
	// how leavers are discarded from the round
	requests := make([]ai.ActionRequest, 0, len(input.Actions))
	for _, a := range input.Actions {
		actorEntity, ok := actorByID[a.ActorID]
		if !ok {
			slog.Warn("skipping action for unknown actor",
				"room_id", input.RoomID, "actor_id", a.ActorID)
			continue
		}
		requests = append(requests, ai.ActionRequest{
			ActorID:    a.ActorID,
			ActorName:  actorEntity.Name,
			ActionText: a.ActionText,
			ActionType: a.ActionType,
		})
	}
	if len(requests) == 0 {
		return nil, errors.InvalidArgument("no submitted action belongs to an actor in the room")
	}

	history, err := o.recentHistory(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	// one judge call covers the whole batch; a judge failure falls back
	// to the default difficulty rather than blocking the round
	verdicts := map[string]ai.Verdict{}
	judgeOut, err := o.judge.JudgeActions(ctx, &ai.JudgeInput{
		WorldPrompt: roomOut.Room.WorldPrompt,
		Actors:      actorsOut.Actors,
		History:     history,
		Actions:     requests,
	})
	if err != nil {
		slog.Error("judge call failed, applying default difficulty",
			"room_id", input.RoomID, "error", err)
	} else {
		verdicts = judgeOut.Verdicts
	}

	judgments := make([]*game.Judgment, 0, len(requests))
	actorIDs := make([]string, 0, len(requests))
	analyses := make(map[string]rounds.Analysis, len(requests))
	var actionLog strings.Builder
	for _, req := range requests {
		j, err := o.buildJudgment(input.RoomID, req, verdicts, actorByID[req.ActorID], input.PreRoll)
		if err != nil {
			return nil, err
		}

		if _, err := o.judgmentRepo.Create(ctx, judgment.CreateInput{Judgment: j}); err != nil {
			return nil, err
		}
		judgments = append(judgments, j)
		actorIDs = append(actorIDs, req.ActorID)
		analyses[req.ActorID] = rounds.Analysis{
			Modifier:   j.Modifier,
			Difficulty: j.Difficulty,
			Reasoning:  j.DifficultyReasoning,
		}
		fmt.Fprintf(&actionLog, "%s: %s\n", req.ActorName, req.ActionText)

		slog.Info("action analyzed",
			"room_id", input.RoomID,
			"actor_id", req.ActorID,
			"judgment_id", j.ID,
			"difficulty", j.Difficulty,
			"phase", j.Phase.String())
	}

	var roundID int64
	if input.FreshRound {
		roundID = o.tracker.OpenRound(input.RoomID, actorIDs, analyses)
	} else {
		for _, id := range actorIDs {
			o.tracker.Submit(input.RoomID, id, analyses[id])
		}
		roundID, _ = o.tracker.RoundID(input.RoomID)
	}
	o.mirrorRound(ctx, input.RoomID)

	// log the party's declared actions ahead of the AI prose
	if _, err := o.narrativeRepo.Create(ctx, narrative.CreateInput{Entry: &game.NarrativeEntry{
		ID:        o.narrativeIDGen.Generate(),
		RoomID:    input.RoomID,
		Role:      game.RoleUser,
		Content:   strings.TrimSpace(actionLog.String()),
		CreatedAt: o.clk.Now(),
	}}); err != nil {
		slog.Warn("failed to log round actions", "room_id", input.RoomID, "error", err)
	}

	// in the pre-roll flow every die is already drawn, so narration can
	// generate in the background while players confirm. A later batch
	// for the same room replaces both the buffer and the producer.
	if input.PreRoll {
		o.beginNarration(input.RoomID, roundID)
	}

	return &AnalyzeActionsOutput{Judgments: judgments}, nil
}

// beginNarration registers a fresh buffer for the room and launches the
// supervised producer that fills it
func (o *orchestrator) beginNarration(roomID string, roundID int64) {
	narrativeID := o.narrativeIDGen.Generate()
	buf := o.streams.Create(roomID, narrativeID)

	slog.Info("narration generation started",
		"room_id", roomID, "round_id", roundID, "narrative_id", narrativeID)

	o.supervisor.Start(roomID, narrateTaskName, func(ctx context.Context) error {
		return o.produce(ctx, roomID, buf)
	})
}

// buildJudgment assembles one judgment from a judged action, pre-rolling
// and resolving it when preRoll is set
func (o *orchestrator) buildJudgment(
	roomID string,
	req ai.ActionRequest,
	verdicts map[string]ai.Verdict,
	actorEntity *game.Actor,
	preRoll bool,
) (*game.Judgment, error) {
	difficulty := rules.DefaultDifficulty
	reasoning := "default difficulty applied"
	if v, ok := verdicts[req.ActorID]; ok {
		difficulty = rules.ClampDifficulty(v.Difficulty)
		reasoning = v.Reasoning
	}

	j := &game.Judgment{
		ID:                  o.judgmentIDGen.Generate(),
		RoomID:              roomID,
		ActorID:             req.ActorID,
		ActionText:          req.ActionText,
		ActionType:          req.ActionType,
		Modifier:            rules.ActionModifier(actorEntity, req.ActionType),
		Difficulty:          difficulty,
		DifficultyReasoning: reasoning,
		Phase:               game.PhaseAnalyzed,
		CreatedAt:           o.clk.Now(),
	}

	if preRoll {
		die, err := o.roller.RollD20()
		if err != nil {
			return nil, err
		}
		res := rules.Resolve(die, j.Modifier, j.Difficulty)
		j.DieResult = &res.DieResult
		j.FinalValue = &res.FinalValue
		j.Outcome = res.Outcome
		j.OutcomeReasoning = rules.OutcomeReasoning(res, j.Difficulty)
		j.Phase = game.PhasePreRolled
	}

	return j, nil
}

func (o *orchestrator) RollDie(ctx context.Context, input *RollDieInput) (*RollDieOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}
	if input.ActorID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	current, err := o.judgmentRepo.CurrentForActor(ctx, judgment.CurrentForActorInput{
		RoomID:  input.RoomID,
		ActorID: input.ActorID,
	})
	if err != nil {
		return nil, err
	}

	j := current.Judgment
	if j.Phase != game.PhaseAnalyzed {
		return nil, errors.FailedPreconditionf(
			"judgment %s is %s, expected %s", j.ID, j.Phase, game.PhaseAnalyzed)
	}

	die, err := o.roller.RollD20()
	if err != nil {
		return nil, err
	}
	res := rules.Resolve(die, j.Modifier, j.Difficulty)
	j.DieResult = &res.DieResult
	j.FinalValue = &res.FinalValue
	j.Outcome = res.Outcome
	j.OutcomeReasoning = rules.OutcomeReasoning(res, j.Difficulty)
	j.Phase = game.PhaseConfirmed

	if _, err := o.judgmentRepo.Update(ctx, judgment.UpdateInput{Judgment: j}); err != nil {
		return nil, err
	}

	// a direct roll is its own confirmation; the tracker keeps the first
	// die it saw for the actor
	if !o.tracker.RecordRoll(input.RoomID, input.ActorID, die) {
		slog.Warn("roll outside the open round ignored",
			"room_id", input.RoomID, "actor_id", input.ActorID)
	}
	allReady := o.tracker.AllRolled(input.RoomID)
	o.mirrorRound(ctx, input.RoomID)

	slog.Info("die rolled",
		"room_id", input.RoomID,
		"actor_id", input.ActorID,
		"die", die,
		"outcome", string(j.Outcome),
		"all_ready", allReady)

	return &RollDieOutput{Judgment: j, AllReady: allReady}, nil
}

func (o *orchestrator) ConfirmRoll(ctx context.Context, input *ConfirmRollInput) (*ConfirmRollOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}
	if input.ActorID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	current, err := o.judgmentRepo.CurrentForActor(ctx, judgment.CurrentForActorInput{
		RoomID:  input.RoomID,
		ActorID: input.ActorID,
	})
	if err != nil {
		return nil, err
	}

	j := current.Judgment
	if j.Phase != game.PhasePreRolled {
		return nil, errors.FailedPreconditionf(
			"judgment %s is %s, expected %s", j.ID, j.Phase, game.PhasePreRolled)
	}

	j.Phase = game.PhaseConfirmed
	if _, err := o.judgmentRepo.Update(ctx, judgment.UpdateInput{Judgment: j}); err != nil {
		return nil, err
	}

	if !o.tracker.RecordRoll(input.RoomID, input.ActorID, *j.DieResult) {
		slog.Warn("confirmation outside the open round ignored",
			"room_id", input.RoomID, "actor_id", input.ActorID)
	}
	allReady := o.tracker.AllRolled(input.RoomID)
	o.mirrorRound(ctx, input.RoomID)

	slog.Info("roll confirmed",
		"room_id", input.RoomID,
		"actor_id", input.ActorID,
		"judgment_id", j.ID,
		"all_ready", allReady)

	return &ConfirmRollOutput{Judgment: j, AllReady: allReady}, nil
}

func (o *orchestrator) StreamNarrative(ctx context.Context, input *StreamNarrativeInput) (*StreamNarrativeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	confirmed, err := o.judgmentRepo.ListByPhase(ctx, judgment.ListByPhaseInput{
		RoomID: input.RoomID,
		Phase:  game.PhaseConfirmed,
	})
	if err != nil {
		return nil, err
	}
	if len(confirmed.Judgments) == 0 {
		return nil, errors.FailedPreconditionf("no confirmed judgments in room %s", input.RoomID)
	}

	buf, err := o.streams.Get(input.RoomID)
	if err != nil {
		if errors.IsNotFound(err) {
			// nothing was pre-generated for this room, as in the direct
			// roll flow; generate in one call instead
			return o.narrateDirect(ctx, input.RoomID, confirmed.Judgments, input.Sink)
		}
		return nil, err
	}

	// the round closes once narration begins; new submissions start the
	// next round
	o.closeRound(ctx, input.RoomID)

	content, err := o.drain(ctx, buf, input.Sink)
	if err != nil {
		return nil, err
	}

	narrativeID := buf.NarrativeID()
	out := &StreamNarrativeOutput{
		NarrativeID: narrativeID,
		Content:     content,
		Persisted:   true,
		Truncated:   buf.WasForced(),
	}

	// persistence failure after a successful stream is reported, not
	// fatal: players already saw the prose
	if err := o.persistRound(ctx, input.RoomID, narrativeID, content); err != nil {
		slog.Error("failed to persist narrative",
			"room_id", input.RoomID, "narrative_id", narrativeID, "error", err)
		out.Persisted = false
	}

	slog.Info("narration complete",
		"room_id", input.RoomID,
		"narrative_id", narrativeID,
		"chars", len(content),
		"persisted", out.Persisted,
		"truncated", out.Truncated)

	return out, nil
}

// narrateDirect generates the round's prose with a single narrator call,
// for rounds whose dice were drawn outside the pre-roll flow and so have
// no buffer to replay
func (o *orchestrator) narrateDirect(
	ctx context.Context,
	roomID string,
	judgments []*game.Judgment,
	sink TokenSink,
) (*StreamNarrativeOutput, error) {
	narrateInput, err := o.buildNarrateInput(ctx, roomID, judgments)
	if err != nil {
		return nil, err
	}

	o.closeRound(ctx, roomID)

	content, err := o.narrator.Narrate(ctx, narrateInput)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.WrapWithCode(err, errors.CodeDeadlineExceeded, "narration timed out")
		}
		return nil, err
	}

	if sink != nil {
		if err := sink(content); err != nil {
			return nil, err
		}
	}

	narrativeID := o.narrativeIDGen.Generate()
	out := &StreamNarrativeOutput{
		NarrativeID: narrativeID,
		Content:     content,
		Persisted:   true,
	}
	if err := o.persistRound(ctx, roomID, narrativeID, content); err != nil {
		slog.Error("failed to persist narrative",
			"room_id", roomID, "narrative_id", narrativeID, "error", err)
		out.Persisted = false
	}

	slog.Info("narration complete",
		"room_id", roomID,
		"narrative_id", narrativeID,
		"chars", len(content),
		"persisted", out.Persisted,
		"direct", true)

	return out, nil
}

// closeRound resets the tracker and drops the room's mirror. Called once
// narration for the round is underway.
func (o *orchestrator) closeRound(ctx context.Context, roomID string) {
	o.tracker.Reset(roomID)
	if _, err := o.roundStateRepo.Clear(ctx, roundstate.ClearInput{RoomID: roomID}); err != nil {
		slog.Warn("failed to clear round mirror", "room_id", roomID, "error", err)
	}
}

// buildNarrateInput gathers the room prompt, recent history, and resolved
// results the narrator needs
func (o *orchestrator) buildNarrateInput(ctx context.Context, roomID string, judgments []*game.Judgment) (*ai.NarrateInput, error) {
	roomOut, err := o.roomRepo.Get(ctx, room.GetInput{ID: roomID})
	if err != nil {
		return nil, err
	}
	history, err := o.recentHistory(ctx, roomID)
	if err != nil {
		return nil, err
	}
	results, err := o.collectResults(ctx, judgments)
	if err != nil {
		return nil, err
	}

	return &ai.NarrateInput{
		WorldPrompt: roomOut.Room.WorldPrompt,
		History:     history,
		Results:     results,
	}, nil
}

// produce runs under the supervisor. It gathers the round's rolled
// judgments and streams model tokens into the buffer until done or
// canceled. Pre-rolled judgments count: by the time the prose is
// replayed every one of them has either been confirmed or discarded, and
// a discard-heavy round is replaced by the next analyze batch anyway.
func (o *orchestrator) produce(ctx context.Context, roomID string, buf *stream.Buffer) error {
	judgments, err := o.rolledJudgments(ctx, roomID)
	if err != nil {
		buf.Fail(err)
		return err
	}
	if len(judgments) == 0 {
		err := errors.FailedPreconditionf("no rolled judgments in room %s", roomID)
		buf.Fail(err)
		return err
	}

	narrateInput, err := o.buildNarrateInput(ctx, roomID, judgments)
	if err != nil {
		buf.Fail(err)
		return err
	}

	err = o.narrator.StreamNarrative(ctx, narrateInput, func(token string) error {
		return buf.Append(token)
	})
	if err != nil {
		// a forced-complete buffer rejects appends; that is not a
		// narrator failure
		if buf.WasForced() {
			return nil
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		buf.Fail(err)
		return err
	}
	buf.Complete()
	return nil
}

// rolledJudgments lists the room's judgments that carry a die result,
// pre-rolled and confirmed alike
func (o *orchestrator) rolledJudgments(ctx context.Context, roomID string) ([]*game.Judgment, error) {
	var judgments []*game.Judgment
	for _, phase := range []game.Phase{game.PhasePreRolled, game.PhaseConfirmed} {
		out, err := o.judgmentRepo.ListByPhase(ctx, judgment.ListByPhaseInput{
			RoomID: roomID,
			Phase:  phase,
		})
		if err != nil {
			return nil, err
		}
		judgments = append(judgments, out.Judgments...)
	}
	return judgments, nil
}

// drain releases buffered tokens to the sink at the pacing interval
// until the buffer is exhausted
func (o *orchestrator) drain(ctx context.Context, buf *stream.Buffer, sink TokenSink) (string, error) {
	for {
		tokens, drained := buf.NextTokens()
		for _, token := range tokens {
			if sink != nil {
				if err := sink(token); err != nil {
					return "", err
				}
			}
			if err := sleepCtx(ctx, o.tokenPace); err != nil {
				return "", wrapDrainErr(err)
			}
		}
		if drained {
			break
		}
		if err := sleepCtx(ctx, o.pollInterval); err != nil {
			return "", wrapDrainErr(err)
		}
	}

	if err := buf.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errors.WrapWithCode(err, errors.CodeDeadlineExceeded, "narration timed out")
		}
		return "", errors.WrapWithCode(err, errors.CodeUnavailable, "narrator failed")
	}
	return buf.Content(), nil
}

// wrapDrainErr distinguishes a consumer that ran out of time from one
// that was canceled
func wrapDrainErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.WrapWithCode(err, errors.CodeDeadlineExceeded, "narration timed out")
	}
	return errors.WrapWithCode(err, errors.CodeCanceled, "narration canceled")
}

// collectResults converts rolled judgments into narrator inputs
func (o *orchestrator) collectResults(ctx context.Context, judgments []*game.Judgment) ([]ai.ResolvedAction, error) {
	results := make([]ai.ResolvedAction, 0, len(judgments))

	for _, j := range judgments {
		if j.DieResult == nil || j.FinalValue == nil {
			return nil, errors.Internalf("judgment %s has no roll", j.ID)
		}

		name := j.ActorID
		actorOut, err := o.actorRepo.Get(ctx, actor.GetInput{ID: j.ActorID})
		if err == nil {
			name = actorOut.Actor.Name
		}

		results = append(results, ai.ResolvedAction{
			ActorName:  name,
			ActionText: j.ActionText,
			DieResult:  *j.DieResult,
			Modifier:   j.Modifier,
			FinalValue: *j.FinalValue,
			Difficulty: j.Difficulty,
			Outcome:    j.Outcome,
			Reasoning:  j.OutcomeReasoning,
		})
	}

	return results, nil
}

// persistRound stores the AI entry and advances the round's judgments
// to their terminal phase
func (o *orchestrator) persistRound(ctx context.Context, roomID, narrativeID, content string) error {
	if _, err := o.narrativeRepo.Create(ctx, narrative.CreateInput{Entry: &game.NarrativeEntry{
		ID:        narrativeID,
		RoomID:    roomID,
		Role:      game.RoleAI,
		Content:   content,
		CreatedAt: o.clk.Now(),
	}}); err != nil {
		return err
	}

	_, err := o.judgmentRepo.AdvancePhase(ctx, judgment.AdvancePhaseInput{
		RoomID:      roomID,
		From:        game.PhaseConfirmed,
		To:          game.PhaseNarrated,
		NarrativeID: narrativeID,
	})
	return err
}

func (o *orchestrator) DiscardActor(ctx context.Context, input *DiscardActorInput) (*DiscardActorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}
	if input.ActorID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	allReady := o.tracker.Discard(input.RoomID, input.ActorID)
	o.mirrorRound(ctx, input.RoomID)

	slog.Info("actor discarded from round",
		"room_id", input.RoomID, "actor_id", input.ActorID, "all_ready", allReady)

	return &DiscardActorOutput{AllReady: allReady}, nil
}

func (o *orchestrator) RoundStatus(_ context.Context, input *RoundStatusInput) (*RoundStatusOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	roundID, _ := o.tracker.RoundID(input.RoomID)
	submitted, rolled := o.tracker.Counts(input.RoomID)
	return &RoundStatusOutput{
		RoundID:   roundID,
		Submitted: submitted,
		Confirmed: rolled,
		AllReady:  o.tracker.AllRolled(input.RoomID),
	}, nil
}

func (o *orchestrator) RestoreRound(ctx context.Context, input *RestoreRoundInput) (*RestoreRoundOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	loaded, err := o.roundStateRepo.Load(ctx, roundstate.LoadInput{RoomID: input.RoomID})
	if err != nil {
		if errors.IsNotFound(err) {
			return &RestoreRoundOutput{Restored: false}, nil
		}
		return nil, err
	}

	o.tracker.Restore(input.RoomID, rounds.Snapshot{
		RoundID: loaded.State.RoundID,
		Pending: loaded.State.Pending,
		Rolled:  loaded.State.Rolled,
	})
	slog.Info("round restored from mirror",
		"room_id", input.RoomID,
		"round_id", loaded.State.RoundID,
		"pending", len(loaded.State.Pending),
		"rolled", len(loaded.State.Rolled))

	return &RestoreRoundOutput{Restored: true}, nil
}

// recentHistory loads the newest narrative entries as prompt context
func (o *orchestrator) recentHistory(ctx context.Context, roomID string) ([]string, error) {
	entries, err := o.narrativeRepo.ListRecent(ctx, narrative.ListRecentInput{
		RoomID: roomID,
		Limit:  historyLimit,
	})
	if err != nil {
		return nil, err
	}

	history := make([]string, 0, len(entries.Entries))
	for _, e := range entries.Entries {
		history = append(history, e.Content)
	}
	return history, nil
}

// mirrorRound writes the tracker's view of the room to Redis. Best
// effort: the in-memory tracker stays authoritative.
func (o *orchestrator) mirrorRound(ctx context.Context, roomID string) {
	snap := o.tracker.Snapshot(roomID)
	if snap == nil {
		if _, err := o.roundStateRepo.Clear(ctx, roundstate.ClearInput{RoomID: roomID}); err != nil {
			slog.Warn("failed to clear round mirror", "room_id", roomID, "error", err)
		}
		return
	}
	if _, err := o.roundStateRepo.Save(ctx, roundstate.SaveInput{
		RoomID: roomID,
		State: &roundstate.State{
			RoundID: snap.RoundID,
			Pending: snap.Pending,
			Rolled:  snap.Rolled,
		},
	}); err != nil {
		slog.Warn("failed to mirror round", "room_id", roomID, "error", err)
	}
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
