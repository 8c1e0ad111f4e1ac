package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/UziB26/leagueladder-sub000/models"
	"github.com/UziB26/leagueladder-sub000/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DisputeService suspends disputed contests until an administrative resolution
// re-enters the pipeline. It is a gate, not a state engine: the disputed flip
// already happened in the confirmation transaction; this service only exposes
// the frozen contest and accepts the authoritative resolution.
type DisputeService struct {
	DB     *gorm.DB
	Engine *RatingEngine
}

func NewDisputeService(db *gorm.DB, engine *RatingEngine) *DisputeService {
	return &DisputeService{DB: db, Engine: engine}
}

// OnDispute is the notification hook invoked from the confirmation transaction.
// Deliberately side-effect free towards the database — the caller already
// persisted everything that matters.
func (s *DisputeService) OnDispute(contest *models.Contest, conf *models.Confirmation) {
	log.Printf("[DISPUTE] 🚩 contest=%s flagged by player=%s reason=%q", contest.ID, conf.PlayerID, conf.Reason)
}

// ResolveDispute applies an administrator's authoritative score to a disputed
// contest: an authoritative re-report followed by a forced finalize, bypassing
// the second-confirmation requirement because the resolver's authority
// substitutes for participant consensus. The DisputeResolution audit row is
// written in the same transaction; shipping it to the audit sink is the
// export worker's job and never blocks this call.
func (s *DisputeService) ResolveDispute(contestID string, score1, score2 int, resolverID, note string) (*ContestOutcome, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrMalformedScore
	}

	var outcome ContestOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var contest models.Contest
		if err := lockForUpdate(tx).First(&contest, "id = ?", contestID).Error; err != nil {
			return err
		}
		if contest.Status != models.ContestDisputed {
			return ErrContestNotDisputed
		}

		var league models.League
		if err := tx.First(&league, "id = ?", contest.LeagueID).Error; err != nil {
			return err
		}
		winnerID, err := deriveWinner(&contest, &league, score1, score2)
		if err != nil {
			return err
		}

		if err := transitionContest(tx, &contest, models.ContestFinalized, ErrContestNotDisputed, map[string]interface{}{
			"score1":    score1,
			"score2":    score2,
			"winner_id": winnerID,
		}); err != nil {
			return err
		}
		contest.Score1, contest.Score2 = score1, score2
		contest.WinnerID = winnerID

		updates, err := s.Engine.ApplyResult(tx, &contest)
		if err != nil {
			return err
		}

		resolution := models.DisputeResolution{
			ID:          uuid.NewString(),
			ContestID:   contest.ID,
			ResolvedBy:  resolverID,
			FinalScore1: score1,
			FinalScore2: score2,
			WinnerID:    winnerID,
			Note:        note,
		}
		if err := tx.Create(&resolution).Error; err != nil {
			return err
		}

		outcome = ContestOutcome{Contest: contest, RatingUpdates: updates}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[DISPUTE] ✅ contest=%s resolved by %s: %d-%d", contestID, resolverID, score1, score2)
	return &outcome, nil
}

// AttachEvidence stores a participant's evidence file for a disputed contest
// in R2 and records its metadata.
func (s *DisputeService) AttachEvidence(contestID, playerID string, fileURL, contentType string, sizeBytes int64, note string) (*models.DisputeEvidence, error) {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return nil, err
	}
	if contest.Status != models.ContestDisputed {
		return nil, ErrContestNotDisputed
	}
	if !contest.HasParticipant(playerID) {
		return nil, ErrNotParticipant
	}

	evidence := models.DisputeEvidence{
		ID:          uuid.NewString(),
		ContestID:   contestID,
		UploadedBy:  playerID,
		FileURL:     fileURL,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		Note:        note,
	}
	if err := s.DB.Create(&evidence).Error; err != nil {
		return nil, err
	}
	return &evidence, nil
}

// ---- Fiber endpoints ----

type resolveDisputeRequest struct {
	Score1 *int   `json:"score1"`
	Score2 *int   `json:"score2"`
	Note   string `json:"note,omitempty"`
}

// ResolveDisputeEndpoint is the administrative resolution entry point. The
// route group already requires the admin role; the resolver identity comes
// from the forwarded user context.
func (s *DisputeService) ResolveDisputeEndpoint(c *fiber.Ctx) error {
	contestID := c.Params("id")
	resolverID, _ := c.Locals("user_id").(string)

	var req resolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Score1 == nil || req.Score2 == nil {
		return c.Status(400).JSON(fiber.Map{"error": "score1 and score2 are required"})
	}

	outcome, err := s.ResolveDispute(contestID, *req.Score1, *req.Score2, resolverID, req.Note)
	if err != nil {
		return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(outcome)
}

// ListDisputedEndpoint returns contests frozen pending adjudication.
func (s *DisputeService) ListDisputedEndpoint(c *fiber.Ctx) error {
	var contests []models.Contest
	q := s.DB.Preload("Confirmations").Where("status = ?", models.ContestDisputed).Order("updated_at ASC")
	if leagueID := c.Query("league_id"); leagueID != "" {
		q = q.Where("league_id = ?", leagueID)
	}
	if err := q.Find(&contests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"disputes": contests, "count": len(contests)})
}

// UploadEvidenceEndpoint accepts a multipart evidence file from a participant
// of a disputed contest and stores it in R2.
func (s *DisputeService) UploadEvidenceEndpoint(c *fiber.Ctx) error {
	contestID := c.Params("id")
	playerID := c.FormValue("player_id")
	note := c.FormValue("note")
	if playerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}

	userID, _ := c.Locals("user_id").(string)
	var player models.LadderPlayer
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if player.ExternalUserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "player does not belong to the authenticated user"})
	}

	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "evidence file is required"})
	}
	if err := utils.ValidateEvidenceFile(file); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := fmt.Sprintf("disputes/%s/%s%s", contestID, uuid.NewString(), ext)
	fileURL, err := utils.UploadEvidence(c.Context(), file, key)
	if err != nil {
		if errors.Is(err, utils.ErrEvidenceStoreDisabled) {
			return c.Status(503).JSON(fiber.Map{"error": "evidence storage is not configured"})
		}
		log.Printf("[DISPUTE] ❌ evidence upload failed for contest %s: %v", contestID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store evidence file"})
	}

	evidence, err := s.AttachEvidence(contestID, playerID, fileURL, file.Header.Get("Content-Type"), file.Size, note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(evidence)
}
