package builder

import "errors"

var (
	// ErrInvalidArgument reports a caller-supplied value with the wrong
	// shape or type. The wrapping message names the parameter, the value
	// received, and the expected shape.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLogic reports builder state that cannot render a single valid
	// statement (no table, no query kind, conflicting kinds).
	ErrLogic = errors.New("inconsistent query state")
)
