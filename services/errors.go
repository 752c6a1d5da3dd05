package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Authentication and authorization.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrForbiddenOperation = errors.New("operation not allowed for the current operator")

	// Tournament lifecycle.
	ErrTournamentInvalidRegDate          = errors.New("registration close date must not be after the start date")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotEditable             = errors.New("tournament can no longer be edited")

	// Fixtures and results.
	ErrFixturesLocked        = errors.New("fixtures cannot be regenerated after results are recorded")
	ErrFixtureNotScheduled   = errors.New("fixture is not in a state that accepts a result")
	ErrResultScoresRequired  = errors.New("both scores are required to record a result")
	ErrExtraTimeNotAllowed   = errors.New("extra time is not allowed for this sport")
	ErrPenaltiesNotAllowed   = errors.New("penalties are not allowed for this sport")
	ErrKnockoutRoundNotDone  = errors.New("current knockout round is not fully completed")
	ErrKnockoutAlreadyWon    = errors.New("knockout bracket already has a winner")
	ErrNotKnockoutTournament = errors.New("tournament is not a knockout competition")

	// Teams and rosters.
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrRosterFull            = errors.New("team roster is already at the maximum size")
	ErrRosterLocked          = errors.New("roster is locked once fixtures exist")
	ErrPlayerNotVerified     = errors.New("player registration is not verified")
	ErrRegistrationMismatch  = errors.New("registration does not belong to this tournament")
	ErrRegistrationNotLinked = errors.New("registration id number does not match the player")

	// Registration and verification workflow.
	ErrRegistrationClosed     = errors.New("tournament registration is not open")
	ErrDuplicateRegistration  = errors.New("this id number is already registered for the tournament")
	ErrLivePhotoRequired      = errors.New("a live photo is required to register")
	ErrVerificationNotPending = errors.New("verification decision already recorded for this state")
	ErrManualDecisionInvalid  = errors.New("manual decision must be verified or rejected")
	ErrReferencePhotoMissing  = errors.New("registration has no reference photo on file")
)
