package core

import "errors"

// Error taxonomy surfaced to HTTP handlers. Services wrap these with
// fmt.Errorf("%w: detail") so response.WriteServiceError can map them to
// status codes while keeping the detail in the message.
var (
	// ErrForbidden: the actor is not the owner or staff for the requested
	// transition. Maps to 403.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput: validation or state-precondition failure. Maps to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: unknown assignment, report, or officer reference. Maps to 404.
	ErrNotFound = errors.New("not found")
)

// Actor is the resolved identity performing an operation. Authentication is
// an external collaborator; services only consume this pair.
type Actor struct {
	ID      string
	IsStaff bool
}
