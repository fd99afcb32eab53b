package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationError() {
	ve := errors.NewValidationError()
	ve.AddFieldError("room_id", "is required")
	ve.AddFieldError("action_type", "is invalid")
	ve.AddFieldErrorf("difficulty", "must be at least %d", 5)

	s.Assert().True(ve.HasErrors())
	s.Assert().Contains(ve.Error(), "room_id: is required")
	s.Assert().Contains(ve.Error(), "action_type: is invalid")
	s.Assert().Contains(ve.Error(), "difficulty: must be at least 5")

	err := ve.ToError()
	s.Assert().Equal(errors.CodeInvalidArgument, err.Code)
	s.Assert().NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.Field("room_id", "is required").
		Fieldf("difficulty", "must be between %d and %d", 5, 30).
		RequiredField("actor_id").
		InvalidField("action_type", "not a known ability")

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	err := vb.Build()
	s.Assert().Nil(err)
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "room-1", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"valid with spaces", "  room-1  ", false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("field", tc.value, vb)
			err := vb.Build()
			if tc.shouldErr {
				s.Assert().NotNil(err)
			} else {
				s.Assert().Nil(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateMaxLength() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMaxLength("action_text", "I deliver a lengthy monologue to the dragon", 20, vb)
	errors.ValidateMaxLength("title", "Vault", 50, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["action_text"][0], "must be no more than 20 characters")
	s.Assert().NotContains(validationErrors, "title")
}

func (s *ValidationTestSuite) TestValidateMinLength() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMinLength("world_prompt", "dark", 10, vb)
	errors.ValidateMinLength("title", "The Sunken Vault", 3, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["world_prompt"][0], "must be at least 10 characters")
	s.Assert().NotContains(validationErrors, "title")
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("difficulty", 42, 5, 30, vb)
	errors.ValidateRange("die_result", 14, 1, 20, vb)
	errors.ValidateRange("modifier", -11, -10, 10, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["difficulty"][0], "must be between 5 and 30")
	s.Assert().Contains(validationErrors["modifier"][0], "must be between -10 and 10")
	s.Assert().NotContains(validationErrors, "die_result")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	abilities := []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("action_type", "luck", abilities, vb)
	errors.ValidateEnum("fallback_type", "strength", abilities, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["action_type"][0], "must be one of: strength, dexterity")
	s.Assert().NotContains(validationErrors, "fallback_type")
}

func (s *ValidationTestSuite) TestActionBatchValidation() {
	type submission struct {
		ActorID    string
		ActionText string
		ActionType string
	}

	batch := []submission{
		{ActorID: "actor-a", ActionText: "I force the door", ActionType: "strength"},
		{ActorID: "", ActionText: "", ActionType: "luck"},
	}

	abilities := []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}
	vb := errors.NewValidationBuilder()
	for _, a := range batch {
		errors.ValidateRequired("actor_id", a.ActorID, vb)
		errors.ValidateRequired("action_text", a.ActionText, vb)
		errors.ValidateEnum("action_type", a.ActionType, abilities, vb)
	}

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors, "actor_id")
	s.Assert().Contains(validationErrors, "action_text")
	s.Assert().Contains(validationErrors, "action_type")
}
