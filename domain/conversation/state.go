// Package conversation holds the per-user state of the task creation
// dialogue and the stores that persist it.
package conversation

import (
	"context"
	"fmt"
)

// State is the position of a user in the task creation dialogue.
type State string

const (
	StateIdle                State = "idle"
	StateAwaitingDescription State = "awaiting_description"
)

// ParseState validates a stored state value. Empty means idle.
func ParseState(s string) (State, error) {
	switch State(s) {
	case "", StateIdle:
		return StateIdle, nil
	case StateAwaitingDescription:
		return StateAwaitingDescription, nil
	default:
		return StateIdle, fmt.Errorf("unknown conversation state %q", s)
	}
}

// Store keeps exactly one state per user. Users without a stored state are
// idle; storing StateIdle clears the entry.
type Store interface {
	Get(ctx context.Context, userID int64) (State, error)
	Set(ctx context.Context, userID int64, state State) error
}
