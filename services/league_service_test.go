package services

import (
	"errors"
	"testing"

	"github.com/UziB26/leagueladder-sub000/models"
	"gorm.io/gorm"
)

func TestCreateLeagueSlugAndDraws(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeagueService(db)

	league, err := svc.CreateLeague("Friday Night Chess!", "chess", "", "admin-1", nil)
	if err != nil {
		t.Fatalf("CreateLeague failed: %v", err)
	}
	if league.Slug != "friday-night-chess" {
		t.Errorf("slug = %q, want friday-night-chess", league.Slug)
	}
	if !league.AllowsDraws {
		t.Errorf("chess league should allow draws by default")
	}

	// explicit override beats the game-type default
	noDraws := false
	league2, err := svc.CreateLeague("Blitz Chess", "chess", "", "admin-1", &noDraws)
	if err != nil {
		t.Fatalf("CreateLeague failed: %v", err)
	}
	if league2.AllowsDraws {
		t.Errorf("override should disable draws")
	}

	// table tennis has no draw concept
	league3, err := svc.CreateLeague("Office Ping Pong", "table_tennis", "", "admin-1", nil)
	if err != nil {
		t.Fatalf("CreateLeague failed: %v", err)
	}
	if league3.AllowsDraws {
		t.Errorf("table_tennis league should not allow draws")
	}

	// duplicate name → duplicate slug
	if _, err := svc.CreateLeague("Friday Night Chess", "chess", "", "admin-1", nil); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate slug: got %v, want ErrDuplicatedKey", err)
	}
}

func TestRegisterPlayerNormalization(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	// "é" composed vs decomposed must collide after NFC normalization
	if _, err := svc.RegisterPlayer("user-1", "René"); err != nil {
		t.Fatalf("RegisterPlayer failed: %v", err)
	}
	_, err := svc.RegisterPlayer("user-1", "René")
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("decomposed duplicate: got %v, want ErrDuplicatedKey", err)
	}

	// same display name under a different account is fine
	if _, err := svc.RegisterPlayer("user-2", "René"); err != nil {
		t.Fatalf("same name, other account: %v", err)
	}

	if _, err := svc.RegisterPlayer("user-3", "   "); err == nil {
		t.Errorf("blank display name should be rejected")
	}
}

func TestStandingsOrdering(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	confirmSvc := newConfirmationService(db)

	// two finalized contests: A beats B twice → A ranks first
	for i := 0; i < 2; i++ {
		contest := reportedContest(t, db, f)
		if _, err := confirmSvc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, ""); err != nil {
			t.Fatalf("confirmation %d failed: %v", i, err)
		}
	}

	var ratings []models.PlayerRating
	if err := db.Where("league_id = ?", f.League.ID).Order("rating DESC").Find(&ratings).Error; err != nil {
		t.Fatal(err)
	}
	if len(ratings) != 2 {
		t.Fatalf("rating rows = %d, want 2", len(ratings))
	}
	if ratings[0].PlayerID != f.PlayerA.ID {
		t.Errorf("top of the ladder should be player A")
	}
	if ratings[0].Rating <= ratings[1].Rating {
		t.Errorf("ordering broken: %d <= %d", ratings[0].Rating, ratings[1].Rating)
	}
	if ratings[0].Wins != 2 || ratings[1].Losses != 2 {
		t.Errorf("counters: winner wins=%d loser losses=%d, want 2/2", ratings[0].Wins, ratings[1].Losses)
	}
}
