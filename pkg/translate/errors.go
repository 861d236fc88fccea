package translate

import (
	"errors"
	"fmt"
)

// ErrModelCorruption means the diagram violates an invariant that the editor
// is supposed to guarantee. It is a defect, not a user mistake.
var ErrModelCorruption = errors.New("translate: model corruption")

// CorruptionError locates a corruption in the diagram.
type CorruptionError struct {
	Entity string // "node" or "link"
	Key    string
	Reason string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("%v: %s %s: %s", ErrModelCorruption, e.Entity, e.Key, e.Reason)
}

func (e *CorruptionError) Unwrap() error {
	return ErrModelCorruption
}

func corruptLink(key, format string, args ...any) error {
	return &CorruptionError{Entity: "link", Key: key, Reason: fmt.Sprintf(format, args...)}
}

func corruptNode(key, format string, args ...any) error {
	return &CorruptionError{Entity: "node", Key: key, Reason: fmt.Sprintf(format, args...)}
}
