package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Error taxonomy for the contest pipeline.
//
// Validation errors reject a request before any write. State errors mean the
// caller raced or retried against a contest whose state has already moved on —
// always safe to surface to the end user as "this action no longer applies".
// Integrity errors (duplicate key on confirmations / rating_updates) are
// resolved internally by rereading the existing outcome, never by failing the
// row into existence twice.
var (
	// validation
	ErrNotParticipant   = errors.New("player is not a participant in this contest")
	ErrSelfConfirmation = errors.New("the reporting player cannot confirm their own result")
	ErrInvalidDraw      = errors.New("draws are not allowed for this league's game type")
	ErrMalformedScore   = errors.New("scores must be non-negative integers")

	// state
	ErrAlreadyReported                = errors.New("a result has already been reported for this contest")
	ErrAlreadyConfirmed               = errors.New("this player has already responded to the reported result")
	ErrContestNotAwaitingResult       = errors.New("contest is not awaiting a result")
	ErrContestNotAwaitingConfirmation = errors.New("contest is not awaiting confirmation")
	ErrContestNotDisputed             = errors.New("contest is not disputed")
	ErrChallengeNotAccepted           = errors.New("challenge has not been accepted")
)

// httpStatus maps pipeline errors to response codes for the Fiber endpoints.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrSelfConfirmation):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidDraw), errors.Is(err, ErrMalformedScore),
		errors.Is(err, ErrChallengeNotAccepted):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrAlreadyReported), errors.Is(err, ErrAlreadyConfirmed),
		errors.Is(err, ErrContestNotAwaitingResult), errors.Is(err, ErrContestNotAwaitingConfirmation),
		errors.Is(err, ErrContestNotDisputed):
		return fiber.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
