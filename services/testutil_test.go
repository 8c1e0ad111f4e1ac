package services

import (
	"testing"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the same error
// translation the service runs with in production, so unique-constraint
// behavior is exercised for real.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection so every session sees the same :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.LadderPlayer{},
		&models.League{},
		&models.PlayerRating{},
		&models.Challenge{},
		&models.Contest{},
		&models.Confirmation{},
		&models.RatingUpdate{},
		&models.DisputeResolution{},
		&models.DisputeEvidence{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type fixture struct {
	League  models.League
	PlayerA models.LadderPlayer
	PlayerB models.LadderPlayer
}

// seedFixture creates a league and two players.
func seedFixture(t *testing.T, db *gorm.DB, allowsDraws bool) fixture {
	t.Helper()

	f := fixture{
		League: models.League{
			ID:          uuid.NewString(),
			Name:        "Test League",
			Slug:        "test-league",
			GameType:    "table_tennis",
			AllowsDraws: allowsDraws,
		},
		PlayerA: models.LadderPlayer{
			ID:             uuid.NewString(),
			ExternalUserID: "user-a",
			DisplayName:    "Alice",
		},
		PlayerB: models.LadderPlayer{
			ID:             uuid.NewString(),
			ExternalUserID: "user-b",
			DisplayName:    "Bob",
		},
	}
	for _, m := range []interface{}{&f.League, &f.PlayerA, &f.PlayerB} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}
	return f
}

// seedContest creates a contest between the fixture players, awaiting a result.
func seedContest(t *testing.T, db *gorm.DB, f fixture) models.Contest {
	t.Helper()

	contest := models.Contest{
		ID:        uuid.NewString(),
		LeagueID:  f.League.ID,
		Player1ID: f.PlayerA.ID,
		Player2ID: f.PlayerB.ID,
		Status:    models.ContestAwaitingResult,
	}
	if err := db.Create(&contest).Error; err != nil {
		t.Fatalf("failed to seed contest: %v", err)
	}
	return contest
}

func newTestEngine() *RatingEngine {
	return NewRatingEngine(DefaultEloConfig)
}

func countRatingUpdates(t *testing.T, db *gorm.DB, contestID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.RatingUpdate{}).Where("contest_id = ?", contestID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rating updates: %v", err)
	}
	return n
}
