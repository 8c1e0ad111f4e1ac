package services

import (
	"errors"
	"strconv"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// drawCapableGameTypes lists game types where equal scores are a legal result.
// League creation may still override per league.
var drawCapableGameTypes = map[string]bool{
	"chess":    true,
	"checkers": true,
	"go":       true,
}

// LeagueService is the thin CRUD collaborator around League rows; the contest
// pipeline only reads leagues, never writes them.
type LeagueService struct {
	DB *gorm.DB
}

func NewLeagueService(db *gorm.DB) *LeagueService {
	return &LeagueService{DB: db}
}

// CreateLeague registers a league under a URL slug derived from its name.
// Draw eligibility defaults from the game type and may be overridden.
func (s *LeagueService) CreateLeague(name, gameType, description, createdBy string, allowsDraws *bool) (*models.League, error) {
	draws := drawCapableGameTypes[gameType]
	if allowsDraws != nil {
		draws = *allowsDraws
	}
	league := models.League{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		GameType:    gameType,
		AllowsDraws: draws,
		Description: description,
		CreatedBy:   createdBy,
	}
	if err := s.DB.Create(&league).Error; err != nil {
		return nil, err
	}
	return &league, nil
}

// ---- Fiber endpoints ----

type createLeagueRequest struct {
	Name        string `json:"name"`
	GameType    string `json:"game_type"`
	Description string `json:"description,omitempty"`
	AllowsDraws *bool  `json:"allows_draws,omitempty"`
}

func (s *LeagueService) CreateLeagueEndpoint(c *fiber.Ctx) error {
	var req createLeagueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" || req.GameType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and game_type are required"})
	}

	userID, _ := c.Locals("user_id").(string)
	league, err := s.CreateLeague(req.Name, req.GameType, req.Description, userID, req.AllowsDraws)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "a league with this name already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to create league"})
	}
	return c.Status(201).JSON(league)
}

func (s *LeagueService) ListLeaguesEndpoint(c *fiber.Ctx) error {
	var leagues []models.League
	q := s.DB.Order("name ASC")
	if gameType := c.Query("game_type"); gameType != "" {
		q = q.Where("game_type = ?", gameType)
	}
	if err := q.Find(&leagues).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(leagues)
}

func (s *LeagueService) GetLeagueBySlugEndpoint(c *fiber.Ctx) error {
	var league models.League
	if err := s.DB.First(&league, "slug = ?", c.Params("slug")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "league not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(league)
}

// GetStandingsEndpoint returns the league ladder ordered by rating, paginated.
func (s *LeagueService) GetStandingsEndpoint(c *fiber.Ctx) error {
	leagueID := c.Params("id")

	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "25"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 25
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.PlayerRating{}).Where("league_id = ?", leagueID).Count(&total).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var ratings []models.PlayerRating
	err := s.DB.Where("league_id = ?", leagueID).
		Preload("Player").
		Order("rating DESC, games_played DESC").
		Limit(size).Offset(offset).
		Find(&ratings).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return c.JSON(fiber.Map{
		"standings":   ratings,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": totalPages,
	})
}
