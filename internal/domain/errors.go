package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Sentinel errors for registry and harness operations
var (
	// ErrNotFound is returned when a requested code or contract was never registered
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a name or identifier is already bound to different content
	ErrConflict = errors.New("conflict")

	// ErrMalformedState is returned when persisted state cannot be parsed or is missing
	ErrMalformedState = errors.New("malformed state")

	// ErrRegistryClosed is returned for operations on a closed registry
	ErrRegistryClosed = errors.New("registry closed")

	// ErrUnknownAccount is returned when a test wallet name is not in the fixture table
	ErrUnknownAccount = errors.New("unknown test account")

	// ErrInvalidArtifact is returned when an artifact cannot be parsed or carries no bytecode
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrInvalidBlueprint is returned when code stored on chain is not an EIP-5202 blueprint
	ErrInvalidBlueprint = errors.New("invalid blueprint")

	// ErrTxFailed is returned when a mined transaction reverted
	ErrTxFailed = errors.New("transaction failed")

	// ErrInvalidConfig is returned for environment or config values outside their allowed set
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NotFoundError describes a failed lookup and carries close matches among the known keys.
type NotFoundError struct {
	Kind        string
	Key         string
	Suggestions []string
}

// NewNotFoundError builds a NotFoundError, ranking known keys by fuzzy similarity to key.
func NewNotFoundError(kind, key string, known []string) *NotFoundError {
	e := &NotFoundError{Kind: kind, Key: key}
	for i, match := range fuzzy.Find(key, known) {
		if i == 3 {
			break
		}
		e.Suggestions = append(e.Suggestions, match.Str)
	}
	return e
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Key)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError reports a key already bound to different content.
type ConflictError struct {
	Kind     string
	Key      string
	Existing string
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already registered as %s, refusing %s", e.Kind, e.Key, e.Existing, e.Incoming)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
