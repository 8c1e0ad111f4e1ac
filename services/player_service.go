package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// PlayerService is the CRUD collaborator for player identities and their
// rating history.
type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// RegisterPlayer creates a player identity for an external account. Display
// names are NFC-normalized first so visually identical names cannot dodge the
// (account, display name) uniqueness.
func (s *PlayerService) RegisterPlayer(externalUserID, displayName string) (*models.LadderPlayer, error) {
	displayName = norm.NFC.String(strings.TrimSpace(displayName))
	if displayName == "" {
		return nil, errors.New("display_name is required")
	}
	player := models.LadderPlayer{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		DisplayName:    displayName,
	}
	if err := s.DB.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// ---- Fiber endpoints ----

type registerPlayerRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *PlayerService) RegisterPlayerEndpoint(c *fiber.Ctx) error {
	var req registerPlayerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	userID, _ := c.Locals("user_id").(string)
	player, err := s.RegisterPlayer(userID, req.DisplayName)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "you already have a player with this display name"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(player)
}

// SearchPlayersEndpoint searches players by display name.
func (s *PlayerService) SearchPlayersEndpoint(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var players []models.LadderPlayer
	db := s.DB.Model(&models.LadderPlayer{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(display_name) LIKE ?", searchTerm)
	}
	if err := db.Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type PlayerSummary struct {
		ID          string  `json:"id"`
		DisplayName string  `json:"display_name"`
		AvatarURL   *string `json:"avatar_url,omitempty"`
	}
	res := make([]PlayerSummary, len(players))
	for i, p := range players {
		res[i] = PlayerSummary{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
	}
	return c.JSON(res)
}

// GetRatingHistoryEndpoint returns a player's rating audit trail, newest first.
func (s *PlayerService) GetRatingHistoryEndpoint(c *fiber.Ctx) error {
	playerID := c.Params("id")

	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	q := s.DB.Model(&models.RatingUpdate{}).Where("player_id = ?", playerID)
	if leagueID := c.Query("league_id"); leagueID != "" {
		q = q.Where("league_id = ?", leagueID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var updates []models.RatingUpdate
	if err := q.Order("created_at DESC").Limit(size).Offset(offset).Find(&updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return c.JSON(fiber.Map{
		"history":     updates,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": totalPages,
	})
}
