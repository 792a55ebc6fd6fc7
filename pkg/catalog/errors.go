package catalog

import "fmt"

// Error is a structured catalog error with a stable machine-readable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Is reports whether target is a catalog error with the same code, so that
// errors.Is works against the sentinel values below even for errors carrying
// extra details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Common catalog errors
var (
	// ErrNotReady means no snapshot has been installed yet. Transient and
	// caller-retriable; distinct from an empty result.
	ErrNotReady = &Error{Code: "not_ready", Message: "catalog not loaded yet"}

	// ErrNotFound means a slug lookup missed or a random draw hit an empty
	// catalog.
	ErrNotFound = &Error{Code: "not_found", Message: "entry not found"}

	// ErrInvalidArgument means a request parameter is malformed in a way
	// that cannot be normalized away, e.g. a negative page number.
	ErrInvalidArgument = &Error{Code: "invalid_argument", Message: "invalid argument"}
)

// InvalidArgumentf returns an invalid-argument error with formatted details.
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{
		Code:    ErrInvalidArgument.Code,
		Message: ErrInvalidArgument.Message,
		Details: fmt.Sprintf(format, args...),
	}
}
