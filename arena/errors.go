package arena

import "errors"

// Command failures come in five kinds so the web layer can map them to
// HTTP codes without matching on message text. Wrap with fmt.Errorf and
// %w, match with errors.Is.
var (
	// ErrValidation covers malformed input, like attacking yourself.
	ErrValidation = errors.New("invalid request")

	// ErrState means the command isn't legal in the current arena status.
	ErrState = errors.New("wrong arena state")

	// ErrNotFound means an unknown account or a non-participant id.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition means the command was legal but a guard failed:
	// duplicate registration, rank too low, target already eliminated,
	// too few registrants to start.
	ErrPrecondition = errors.New("precondition failed")

	// ErrNotAuthorized means a non-admin invoked an admin command.
	ErrNotAuthorized = errors.New("not authorized")
)
