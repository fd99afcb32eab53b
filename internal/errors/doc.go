// Package errors provides the structured error handling used across gm-api.
//
// This package is inspired by the goaterr pattern and provides:
//   - Structured errors with codes, messages, and metadata
//   - User-friendly error messages for transport-level error events
//   - Error context preservation through wrapping
//   - Validation error helpers
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("room not found")
//	err := errors.InvalidArgumentf("invalid difficulty: %d", dc)
//
// Adding metadata:
//
//	err := errors.NotFound("judgment not found").
//	    WithMeta("room_id", roomID).
//	    WithMeta("actor_id", actorID)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, id); err != nil {
//	    return errors.Wrap(err, "failed to get judgment")
//	}
//
// Changing error semantics:
//
//	if err := db.Query(); err != nil {
//	    if isNotFound(err) {
//	        return errors.WrapWithCode(err, errors.CodeNotFound, "room not found")
//	    }
//	    return errors.Wrap(err, "database error")
//	}
//
// # Error Checking
//
// Type checking:
//
//	if errors.IsFailedPrecondition(err) {
//	    // Caller-ordering violation: report to submitter, never retry
//	}
//
// Extracting information:
//
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//	meta := errors.GetMeta(err)
//
// # Validation Errors
//
// Using the validation builder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("room_id", input.RoomID, vb)
//	errors.ValidateRange("difficulty", int(input.Difficulty), 5, 30, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return domain-specific errors (NotFound, AlreadyExists)
//   - Include relevant IDs in metadata
//   - Wrap Redis errors with context
//
// Orchestrator layer:
//   - Validate inputs and return InvalidArgument errors
//   - Check phase ordering and return FailedPrecondition errors
//   - Map external judge/narrator failures to Unavailable
//   - Map supervisor timeouts to DeadlineExceeded
//
// Coordinator layer:
//   - Convert errors to room error events (code + message + room/actor context)
//   - Extract user-friendly messages
//   - Log internal errors for debugging
//
// # Error Codes
//
// The following error codes are available:
//   - NotFound: Resource not found
//   - InvalidArgument: Invalid input provided
//   - AlreadyExists: Resource already exists
//   - PermissionDenied: Insufficient permissions (host-only operations)
//   - Internal: Internal server error
//   - Unavailable: Judge or narrator temporarily unavailable
//   - FailedPrecondition: Operation requirements not met
//   - Canceled: Operation canceled
//   - DeadlineExceeded: Operation timeout
package errors
