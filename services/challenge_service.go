package services

import (
	"errors"
	"time"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService creates challenge invitations and sweeps expired ones.
// Moving an invitation to accepted is the surrounding application's workflow;
// this service only consumes the result (see ContestService.CreateContestFromChallenge).
type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

// CreateChallenge opens a pending invitation from challenger to challengee.
func (s *ChallengeService) CreateChallenge(leagueID, challengerID, challengeeID, message string, expiresAt *time.Time) (*models.Challenge, error) {
	if challengerID == challengeeID {
		return nil, errors.New("a player cannot challenge themselves")
	}
	challenge := models.Challenge{
		ID:           uuid.NewString(),
		LeagueID:     leagueID,
		ChallengerID: challengerID,
		ChallengeeID: challengeeID,
		Status:       models.ChallengePending,
		Message:      message,
		ExpiresAt:    expiresAt,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var league models.League
		if err := tx.First(&league, "id = ?", leagueID).Error; err != nil {
			return err
		}
		for _, pid := range []string{challengerID, challengeeID} {
			var player models.LadderPlayer
			if err := tx.First(&player, "id = ?", pid).Error; err != nil {
				return err
			}
		}
		return tx.Create(&challenge).Error
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ExpireOverdue flips pending challenges past their expiry to expired and
// returns how many were swept.
func (s *ChallengeService) ExpireOverdue() (int64, error) {
	res := s.DB.Model(&models.Challenge{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.ChallengePending, time.Now()).
		Update("status", models.ChallengeExpired)
	return res.RowsAffected, res.Error
}

// ---- Fiber endpoints ----

type createChallengeRequest struct {
	LeagueID     string     `json:"league_id"`
	ChallengerID string     `json:"challenger_id"`
	ChallengeeID string     `json:"challengee_id"`
	Message      string     `json:"message,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s *ChallengeService) CreateChallengeEndpoint(c *fiber.Ctx) error {
	var req createChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.LeagueID == "" || req.ChallengerID == "" || req.ChallengeeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "league_id, challenger_id and challengee_id are required"})
	}

	userID, _ := c.Locals("user_id").(string)
	var challenger models.LadderPlayer
	if err := s.DB.First(&challenger, "id = ?", req.ChallengerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "challenger not found"})
	}
	if challenger.ExternalUserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "challenger does not belong to the authenticated user"})
	}

	challenge, err := s.CreateChallenge(req.LeagueID, req.ChallengerID, req.ChallengeeID, req.Message, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "league or player not found"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(challenge)
}

// ListChallengesEndpoint lists a player's challenges in either direction.
func (s *ChallengeService) ListChallengesEndpoint(c *fiber.Ctx) error {
	playerID := c.Query("player_id")
	if playerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}

	var challenges []models.Challenge
	q := s.DB.Where("challenger_id = ? OR challengee_id = ?", playerID, playerID).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(challenges)
}
