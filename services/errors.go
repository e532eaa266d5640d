package services

import "errors"

// Sentinel errors shared across services and mapped to HTTP statuses in the
// handler layer.
var (
	// Missing resources
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")

	// Authorization
	ErrForbiddenOperation = errors.New("only the tournament creator can perform this action")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Invalid state
	ErrTournamentFinalized   = errors.New("tournament is already finalized")
	ErrNotEnoughParticipants = errors.New("at least 2 participants are required")
	ErrParticipantHasMatches = errors.New("participant cannot leave while pairings exist")

	// Invalid input
	ErrInvalidRoundCount      = errors.New("requested round count must be at least 1")
	ErrInvalidResult          = errors.New("unknown match result")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")

	// Pairing
	ErrNoPairingsPossible = errors.New("no new pairings could be generated")

	// Conflicts
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrAlreadyJoined     = errors.New("user is already registered in this tournament")
)
