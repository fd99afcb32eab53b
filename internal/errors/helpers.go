package errors

import "errors"

// As finds the first Error in err's chain
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the code from an error. Plain errors report Internal;
// nil reports OK.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetMeta extracts metadata from an error, nil if there is none
func GetMeta(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// GetMessage extracts the player-safe message from an error
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func is(err error, code Code) bool {
	return GetCode(err) == code
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return is(err, CodeInvalidArgument)
}

// IsAlreadyExists checks if the error is an already exists error
func IsAlreadyExists(err error) bool {
	return is(err, CodeAlreadyExists)
}

// IsPermissionDenied checks if the error is a permission denied error
func IsPermissionDenied(err error) bool {
	return is(err, CodePermissionDenied)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return is(err, CodeInternal)
}

// IsUnavailable checks if the error is an unavailable error
func IsUnavailable(err error) bool {
	return is(err, CodeUnavailable)
}

// IsFailedPrecondition checks if the error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return is(err, CodeFailedPrecondition)
}

// IsCanceled checks if the error is a canceled error
func IsCanceled(err error) bool {
	return is(err, CodeCanceled)
}

// IsDeadlineExceeded checks if the error is a deadline exceeded error
func IsDeadlineExceeded(err error) bool {
	return is(err, CodeDeadlineExceeded)
}
