package services

import (
	"errors"
	"log"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmationService decides whether a reported contest converges to
// finalized or diverges to disputed. Exactly two votes exist — the reporter's
// implicit claim and the responder's confirm/dispute — so the whole protocol is
// strict identity plus single-submission checks, no quorum counting.
type ConfirmationService struct {
	DB       *gorm.DB
	Engine   *RatingEngine
	Disputes *DisputeService
}

func NewConfirmationService(db *gorm.DB, engine *RatingEngine, disputes *DisputeService) *ConfirmationService {
	return &ConfirmationService{DB: db, Engine: engine, Disputes: disputes}
}

// ContestOutcome is what a confirmation decision produced.
type ContestOutcome struct {
	Contest       models.Contest        `json:"contest"`
	Confirmation  *models.Confirmation  `json:"confirmation,omitempty"`
	RatingUpdates []models.RatingUpdate `json:"rating_updates,omitempty"`
}

// SubmitConfirmation records the responding participant's agree/dispute and,
// on agreement, finalizes the contest and applies ratings inside the same
// transaction. A dispute (or a confirm carrying mismatched scores) moves the
// contest to disputed and never touches a rating.
//
// The responder must be the participant who did NOT report the result, and may
// respond at most once; the unique (contest, player) confirmation key is the
// backstop for concurrent duplicates, whose losing transaction is surfaced as
// ErrAlreadyConfirmed together with the outcome the winning one produced.
func (s *ConfirmationService) SubmitConfirmation(contestID, responderID string, action models.ConfirmationAction, score1, score2 *int, reason string) (*ContestOutcome, error) {
	if action != models.ActionConfirm && action != models.ActionDispute {
		return nil, errors.New("action must be confirm or dispute")
	}
	if (score1 == nil) != (score2 == nil) {
		return nil, ErrMalformedScore
	}
	if score1 != nil && (*score1 < 0 || *score2 < 0) {
		return nil, ErrMalformedScore
	}

	var outcome ContestOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var contest models.Contest
		if err := lockForUpdate(tx).First(&contest, "id = ?", contestID).Error; err != nil {
			return err
		}
		if contest.Status != models.ContestAwaitingConfirmation {
			return ErrContestNotAwaitingConfirmation
		}
		switch responderID {
		case contest.OtherParticipant(contest.ReportedBy):
			// the side that did not report — the only valid responder
		case contest.ReportedBy:
			return ErrSelfConfirmation
		default:
			return ErrNotParticipant
		}

		conf := models.Confirmation{
			ID:            uuid.NewString(),
			ContestID:     contest.ID,
			PlayerID:      responderID,
			Action:        action,
			ClaimedScore1: score1,
			ClaimedScore2: score2,
			Reason:        reason,
		}
		if err := tx.Create(&conf).Error; err != nil {
			return err // duplicate key resolved below, outside the transaction
		}

		agrees := action == models.ActionConfirm &&
			(score1 == nil || (*score1 == contest.Score1 && *score2 == contest.Score2))

		if agrees {
			if err := transitionContest(tx, &contest, models.ContestFinalized, ErrAlreadyConfirmed, nil); err != nil {
				return err
			}
			updates, err := s.Engine.ApplyResult(tx, &contest)
			if err != nil {
				return err
			}
			outcome = ContestOutcome{Contest: contest, Confirmation: &conf, RatingUpdates: updates}
			return nil
		}

		if err := transitionContest(tx, &contest, models.ContestDisputed, ErrAlreadyConfirmed, nil); err != nil {
			return err
		}
		s.Disputes.OnDispute(&contest, &conf)
		outcome = ContestOutcome{Contest: contest, Confirmation: &conf}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent duplicate: the other submission won and its transaction
			// carried the effect — report that outcome, not a second one
			existing, lookupErr := s.existingOutcome(contestID, responderID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing, ErrAlreadyConfirmed
		}
		return nil, err
	}

	log.Printf("[CONFIRM] contest=%s responder=%s action=%s -> %s", contestID, responderID, action, outcome.Contest.Status)
	return &outcome, nil
}

// existingOutcome rereads the contest state a duplicate submission collided with.
func (s *ConfirmationService) existingOutcome(contestID, responderID string) (*ContestOutcome, error) {
	var contest models.Contest
	if err := s.DB.Preload("RatingUpdates").First(&contest, "id = ?", contestID).Error; err != nil {
		return nil, err
	}
	var conf models.Confirmation
	if err := s.DB.Where("contest_id = ? AND player_id = ?", contestID, responderID).First(&conf).Error; err != nil {
		return nil, err
	}
	return &ContestOutcome{Contest: contest, Confirmation: &conf, RatingUpdates: contest.RatingUpdates}, nil
}

// ---- Fiber endpoints ----

type submitConfirmationRequest struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"` // confirm | dispute
	Score1   *int   `json:"score1,omitempty"`
	Score2   *int   `json:"score2,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// SubmitConfirmationEndpoint is the second participant's response to a report.
func (s *ConfirmationService) SubmitConfirmationEndpoint(c *fiber.Ctx) error {
	contestID := c.Params("id")

	var req submitConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.PlayerID == "" || req.Action == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id and action are required"})
	}

	userID, _ := c.Locals("user_id").(string)
	var player models.LadderPlayer
	if err := s.DB.First(&player, "id = ?", req.PlayerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if player.ExternalUserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "player does not belong to the authenticated user"})
	}

	outcome, err := s.SubmitConfirmation(contestID, req.PlayerID, models.ConfirmationAction(req.Action), req.Score1, req.Score2, req.Reason)
	if err != nil {
		if errors.Is(err, ErrAlreadyConfirmed) && outcome != nil {
			// replayed/raced submission; the contest already reached its outcome
			return c.Status(409).JSON(fiber.Map{"error": err.Error(), "outcome": outcome})
		}
		return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(outcome)
}
