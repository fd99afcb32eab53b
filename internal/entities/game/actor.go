// Package game defines the core entities of the AI game master domain:
// actors, rooms, action judgments, and narrative entries.
package game

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// ActionType maps a declared action to the ability score it tests
type ActionType string

// Action types, one per ability score
const (
	ActionStrength     ActionType = "strength"
	ActionDexterity    ActionType = "dexterity"
	ActionConstitution ActionType = "constitution"
	ActionIntelligence ActionType = "intelligence"
	ActionWisdom       ActionType = "wisdom"
	ActionCharisma     ActionType = "charisma"
)

// ActionTypes lists all valid action types
var ActionTypes = []ActionType{
	ActionStrength,
	ActionDexterity,
	ActionConstitution,
	ActionIntelligence,
	ActionWisdom,
	ActionCharisma,
}

// Valid reports whether the action type is one of the six known types
func (t ActionType) Valid() bool {
	switch t {
	case ActionStrength, ActionDexterity, ActionConstitution,
		ActionIntelligence, ActionWisdom, ActionCharisma:
		return true
	}
	return false
}

// AbilityScores holds the six raw ability scores (nominal range 1-30)
type AbilityScores struct {
	Strength     int32 `json:"strength"`
	Dexterity    int32 `json:"dexterity"`
	Constitution int32 `json:"constitution"`
	Intelligence int32 `json:"intelligence"`
	Wisdom       int32 `json:"wisdom"`
	Charisma     int32 `json:"charisma"`
}

// Score returns the raw score tested by the given action type.
// Unknown types fall back to the average score of 10.
func (s AbilityScores) Score(t ActionType) int32 {
	switch t {
	case ActionStrength:
		return s.Strength
	case ActionDexterity:
		return s.Dexterity
	case ActionConstitution:
		return s.Constitution
	case ActionIntelligence:
		return s.Intelligence
	case ActionWisdom:
		return s.Wisdom
	case ActionCharisma:
		return s.Charisma
	default:
		return 10
	}
}

// Skill is a named, free-form character skill. Skills are not yet
// mechanically consumed; they are carried for prompts and future bonuses.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StatusEffect is an active buff or debuff. Modifier, when non-zero, is
// added to the actor's action modifier while the effect is active.
type StatusEffect struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Modifier    int32  `json:"modifier,omitempty"`
}

// Actor is a player-controlled character within a room. Read-only during
// a turn; mutated only by character management operations.
type Actor struct {
	ID            string         `json:"id"`
	PlayerID      string         `json:"player_id"`
	Name          string         `json:"name"`
	Abilities     AbilityScores  `json:"abilities"`
	Skills        []Skill        `json:"skills,omitempty"`
	Weaknesses    []string       `json:"weaknesses,omitempty"`
	StatusEffects []StatusEffect `json:"status_effects,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// GetID implements core.Entity
func (a *Actor) GetID() string {
	return a.ID
}

// GetType implements core.Entity
func (a *Actor) GetType() string {
	return "actor"
}

var _ core.Entity = (*Actor)(nil)
