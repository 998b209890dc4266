package schema

import "errors"

var (
	// ErrInvalidArgument reports a caller-supplied value with the wrong
	// shape or type (unknown field in a key declaration, empty field set).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLogic reports internally inconsistent builder state (NULL default
	// on a NOT NULL column, AUTO_INCREMENT outside the primary key).
	ErrLogic = errors.New("inconsistent schema definition")
	// ErrNoType reports a field consumed before any type setter was called.
	ErrNoType = errors.New("field type not set")
)
