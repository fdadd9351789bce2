// FILE: internal/core/error.go
package core

import "errors"

// Sentinel errors for the match core. Callers match with errors.Is.
var (
	// ErrIllegalMove rejects a move the rules engine does not allow.
	// Local and retryable, no state was mutated.
	ErrIllegalMove = errors.New("illegal move")

	// ErrGameOver rejects any apply attempted after the terminal
	// verdict was latched.
	ErrGameOver = errors.New("game is over")

	// ErrTurnInProgress rejects input while a turn cycle (scoring or
	// opponent search) is still active.
	ErrTurnInProgress = errors.New("turn cycle in progress")

	// ErrSessionFault rejects input after an unrecoverable engine
	// failure ended the session.
	ErrSessionFault = errors.New("session faulted")

	// ErrEngineUnavailable means the engine process is not running or
	// could not be started.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrEngineTimeout means the engine produced no answer within the
	// request budget.
	ErrEngineTimeout = errors.New("engine timeout")

	// ErrEngineFailure means the engine errored mid-request or
	// answered with something the rules engine rejects.
	ErrEngineFailure = errors.New("engine failure")

	// ErrMatchNotFound means the requested match ID is unknown.
	ErrMatchNotFound = errors.New("match not found")
)

// API error codes
const (
	CodeMatchNotFound    = "MATCH_NOT_FOUND"
	CodeInvalidMove      = "INVALID_MOVE"
	CodeTurnInProgress   = "TURN_IN_PROGRESS"
	CodeGameOver         = "GAME_OVER"
	CodeSessionFault     = "SESSION_FAULT"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidContent   = "INVALID_CONTENT_TYPE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeEngineFault      = "ENGINE_FAULT"
	CodeInternalError    = "INTERNAL_ERROR"
)
