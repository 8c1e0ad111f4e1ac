package services

import (
	"errors"
	"log"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContestService owns contest creation and the first score report
// (the "awaiting_result → awaiting_confirmation" half of the pipeline).
type ContestService struct {
	DB *gorm.DB
}

func NewContestService(db *gorm.DB) *ContestService {
	return &ContestService{DB: db}
}

// CreateContest opens an ad hoc contest between two players in a league.
func (s *ContestService) CreateContest(leagueID, player1ID, player2ID string) (*models.Contest, error) {
	if player1ID == player2ID {
		return nil, ErrNotParticipant
	}
	contest := models.Contest{
		ID:        uuid.NewString(),
		LeagueID:  leagueID,
		Player1ID: player1ID,
		Player2ID: player2ID,
		Status:    models.ContestAwaitingResult,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var league models.League
		if err := tx.First(&league, "id = ?", leagueID).Error; err != nil {
			return err
		}
		for _, pid := range []string{player1ID, player2ID} {
			var player models.LadderPlayer
			if err := tx.First(&player, "id = ?", pid).Error; err != nil {
				return err
			}
		}
		return tx.Create(&contest).Error
	})
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// CreateContestFromChallenge opens the contest an accepted challenge calls
// for. At most one contest per challenge (unique challenge_id); the challenge
// flips to completed in the same transaction.
func (s *ContestService) CreateContestFromChallenge(challengeID string) (*models.Contest, error) {
	var contest models.Contest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := lockForUpdate(tx).First(&challenge, "id = ?", challengeID).Error; err != nil {
			return err
		}
		if challenge.Status != models.ChallengeAccepted {
			return ErrChallengeNotAccepted
		}

		contest = models.Contest{
			ID:          uuid.NewString(),
			LeagueID:    challenge.LeagueID,
			Player1ID:   challenge.ChallengerID,
			Player2ID:   challenge.ChallengeeID,
			ChallengeID: &challenge.ID,
			Status:      models.ContestAwaitingResult,
		}
		if err := tx.Create(&contest).Error; err != nil {
			return err
		}
		return tx.Model(&challenge).Update("status", models.ChallengeCompleted).Error
	})
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// RecordResult accepts the first score report for a contest. The reporter must
// be a participant and the contest must still be awaiting a result; the scores,
// derived winner and reporter identity land in one status-guarded write that
// moves the contest to awaiting_confirmation. No rating is touched here.
func (s *ContestService) RecordResult(contestID, reporterID string, score1, score2 int) (*models.Contest, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrMalformedScore
	}

	var contest models.Contest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&contest, "id = ?", contestID).Error; err != nil {
			return err
		}
		switch contest.Status {
		case models.ContestAwaitingResult:
			// proceed
		case models.ContestAwaitingConfirmation:
			return ErrAlreadyReported
		default:
			return ErrContestNotAwaitingResult
		}
		if !contest.HasParticipant(reporterID) {
			return ErrNotParticipant
		}

		var league models.League
		if err := tx.First(&league, "id = ?", contest.LeagueID).Error; err != nil {
			return err
		}
		winnerID, err := deriveWinner(&contest, &league, score1, score2)
		if err != nil {
			return err
		}

		if err := transitionContest(tx, &contest, models.ContestAwaitingConfirmation, ErrAlreadyReported, map[string]interface{}{
			"score1":      score1,
			"score2":      score2,
			"winner_id":   winnerID,
			"reported_by": reporterID,
		}); err != nil {
			return err
		}
		contest.Score1, contest.Score2 = score1, score2
		contest.WinnerID = winnerID
		contest.ReportedBy = reporterID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// deriveWinner picks the higher score; equal scores denote a draw only where
// the league's game type permits it.
func deriveWinner(contest *models.Contest, league *models.League, score1, score2 int) (string, error) {
	switch {
	case score1 > score2:
		return contest.Player1ID, nil
	case score2 > score1:
		return contest.Player2ID, nil
	default:
		if !league.AllowsDraws {
			return "", ErrInvalidDraw
		}
		return "", nil
	}
}

// ---- Fiber endpoints ----

type createContestRequest struct {
	LeagueID    string  `json:"league_id"`
	Player1ID   string  `json:"player1_id"`
	Player2ID   string  `json:"player2_id"`
	ChallengeID *string `json:"challenge_id,omitempty"`
}

// CreateContestEndpoint opens a contest, either ad hoc (league + both players)
// or from an accepted challenge.
func (s *ContestService) CreateContestEndpoint(c *fiber.Ctx) error {
	var req createContestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	var contest *models.Contest
	var err error
	if req.ChallengeID != nil && *req.ChallengeID != "" {
		contest, err = s.CreateContestFromChallenge(*req.ChallengeID)
	} else {
		if req.LeagueID == "" || req.Player1ID == "" || req.Player2ID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "league_id, player1_id and player2_id are required"})
		}
		contest, err = s.CreateContest(req.LeagueID, req.Player1ID, req.Player2ID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "a contest already exists for this challenge"})
		}
		return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[CONTEST] Created contest %s (league=%s, %s vs %s)", contest.ID, contest.LeagueID, contest.Player1ID, contest.Player2ID)
	return c.Status(201).JSON(contest)
}

type reportResultRequest struct {
	PlayerID string `json:"player_id"`
	Score1   *int   `json:"score1"`
	Score2   *int   `json:"score2"`
}

// ReportResultEndpoint is the first participant's score report.
func (s *ContestService) ReportResultEndpoint(c *fiber.Ctx) error {
	contestID := c.Params("id")

	var req reportResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.PlayerID == "" || req.Score1 == nil || req.Score2 == nil {
		return c.Status(400).JSON(fiber.Map{"error": "player_id, score1 and score2 are required"})
	}
	if err := s.requirePlayerOwnership(c, req.PlayerID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	}

	contest, err := s.RecordResult(contestID, req.PlayerID, *req.Score1, *req.Score2)
	if err != nil {
		return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[CONTEST] Result reported on %s by %s: %d-%d", contest.ID, req.PlayerID, contest.Score1, contest.Score2)
	return c.JSON(contest)
}

// GetContestEndpoint returns a contest with its confirmations and rating updates.
func (s *ContestService) GetContestEndpoint(c *fiber.Ctx) error {
	var contest models.Contest
	err := s.DB.Preload("Confirmations").Preload("RatingUpdates").
		First(&contest, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(contest)
}

// requirePlayerOwnership checks that the acting gateway user owns the player
// identity the request acts as. Authentication itself happened upstream; this
// only pins the player to the caller.
func (s *ContestService) requirePlayerOwnership(c *fiber.Ctx, playerID string) error {
	userID, _ := c.Locals("user_id").(string)
	var player models.LadderPlayer
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return errors.New("player not found")
	}
	if player.ExternalUserID != userID {
		return errors.New("player does not belong to the authenticated user")
	}
	return nil
}
