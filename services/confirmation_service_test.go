package services

import (
	"errors"
	"testing"

	"github.com/UziB26/leagueladder-sub000/models"
	"gorm.io/gorm"
)

func newConfirmationService(db *gorm.DB) *ConfirmationService {
	engine := newTestEngine()
	return NewConfirmationService(db, engine, NewDisputeService(db, engine))
}

// reportedContest seeds a contest with a 2-1 result reported by player A.
func reportedContest(t *testing.T, db *gorm.DB, f fixture) models.Contest {
	t.Helper()
	contest := seedContest(t, db, f)
	got, err := NewContestService(db).RecordResult(contest.ID, f.PlayerA.ID, 2, 1)
	if err != nil {
		t.Fatalf("failed to report result: %v", err)
	}
	return *got
}

func TestSubmitConfirmationAgreement(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	// B confirms with no score → finalized, ratings applied
	outcome, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, "")
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}
	if outcome.Contest.Status != models.ContestFinalized {
		t.Errorf("status = %s, want finalized", outcome.Contest.Status)
	}
	if len(outcome.RatingUpdates) != 2 {
		t.Fatalf("rating updates = %d, want 2", len(outcome.RatingUpdates))
	}
	if n := countRatingUpdates(t, db, contest.ID); n != 2 {
		t.Errorf("persisted rating updates = %d, want 2", n)
	}

	for _, u := range outcome.RatingUpdates {
		if u.RatingAfter != u.RatingBefore+u.Change {
			t.Errorf("player %s: %d + %d != %d", u.PlayerID, u.RatingBefore, u.Change, u.RatingAfter)
		}
	}

	// both players start at 1000 and 0 games, so K matches and deltas cancel
	if sum := outcome.RatingUpdates[0].Change + outcome.RatingUpdates[1].Change; sum != 0 {
		t.Errorf("equal-K deltas should cancel, got sum %d", sum)
	}

	// winner gained
	var winnerRating models.PlayerRating
	if err := db.Where("player_id = ? AND league_id = ?", f.PlayerA.ID, f.League.ID).First(&winnerRating).Error; err != nil {
		t.Fatal(err)
	}
	if winnerRating.Rating <= 1000 {
		t.Errorf("winner rating = %d, want > 1000", winnerRating.Rating)
	}
	if winnerRating.GamesPlayed != 1 || winnerRating.Wins != 1 {
		t.Errorf("winner counters: games=%d wins=%d, want 1/1", winnerRating.GamesPlayed, winnerRating.Wins)
	}
}

func TestSubmitConfirmationMatchingScore(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	two, one := 2, 1
	outcome, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, &two, &one, "")
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}
	if outcome.Contest.Status != models.ContestFinalized {
		t.Errorf("matching score should finalize, got %s", outcome.Contest.Status)
	}
}

func TestSubmitConfirmationDispute(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	outcome, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionDispute, nil, nil, "score incorrect")
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}
	if outcome.Contest.Status != models.ContestDisputed {
		t.Errorf("status = %s, want disputed", outcome.Contest.Status)
	}
	if n := countRatingUpdates(t, db, contest.ID); n != 0 {
		t.Errorf("disputed contest must have no rating updates, got %d", n)
	}

	// a later submission no longer applies
	_, err = svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, "")
	if !errors.Is(err, ErrContestNotAwaitingConfirmation) {
		t.Fatalf("got %v, want ErrContestNotAwaitingConfirmation", err)
	}
}

func TestSubmitConfirmationMismatchedScoreDisputes(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	// B "confirms" but claims 1-2 → dispute path
	one, two := 1, 2
	outcome, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, &one, &two, "")
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}
	if outcome.Contest.Status != models.ContestDisputed {
		t.Errorf("mismatched confirm should dispute, got %s", outcome.Contest.Status)
	}
	if n := countRatingUpdates(t, db, contest.ID); n != 0 {
		t.Errorf("no ratings may be applied on mismatch, got %d", n)
	}
}

func TestSubmitConfirmationSelfConfirmRejected(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	_, err := svc.SubmitConfirmation(contest.ID, f.PlayerA.ID, models.ActionConfirm, nil, nil, "")
	if !errors.Is(err, ErrSelfConfirmation) {
		t.Fatalf("got %v, want ErrSelfConfirmation", err)
	}
	if n := countRatingUpdates(t, db, contest.ID); n != 0 {
		t.Errorf("self-confirmation must not apply ratings, got %d", n)
	}
}

func TestSubmitConfirmationIdempotent(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	first, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, "")
	if err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	// identical replay: same terminal status, no second confirmation or rating row
	_, err = svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, "")
	if !errors.Is(err, ErrContestNotAwaitingConfirmation) {
		t.Fatalf("replay: got %v, want ErrContestNotAwaitingConfirmation", err)
	}

	var reloaded models.Contest
	if err := db.First(&reloaded, "id = ?", contest.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != first.Contest.Status {
		t.Errorf("replay changed status: %s vs %s", reloaded.Status, first.Contest.Status)
	}

	var confirmations int64
	db.Model(&models.Confirmation{}).Where("contest_id = ?", contest.ID).Count(&confirmations)
	if confirmations != 1 {
		t.Errorf("confirmations = %d, want 1", confirmations)
	}
	if n := countRatingUpdates(t, db, contest.ID); n != 2 {
		t.Errorf("rating updates = %d, want exactly 2", n)
	}
}

func TestSubmitConfirmationDuplicateKeySurfacesExistingOutcome(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	if _, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, ""); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	// simulate the losing side of a concurrent duplicate: the contest was
	// already moved on AND the confirmation row exists, so the constraint path
	// reports the existing outcome under ErrAlreadyConfirmed
	outcome, err := svc.existingOutcome(contest.ID, f.PlayerB.ID)
	if err != nil {
		t.Fatalf("existingOutcome failed: %v", err)
	}
	if outcome.Contest.Status != models.ContestFinalized {
		t.Errorf("existing outcome status = %s, want finalized", outcome.Contest.Status)
	}
	if len(outcome.RatingUpdates) != 2 {
		t.Errorf("existing outcome rating updates = %d, want 2", len(outcome.RatingUpdates))
	}
	if outcome.Confirmation == nil || outcome.Confirmation.PlayerID != f.PlayerB.ID {
		t.Errorf("existing outcome should carry B's confirmation")
	}
}

func TestSubmitConfirmationOutsiderRejected(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := reportedContest(t, db, f)

	_, err := svc.SubmitConfirmation(contest.ID, "not-a-participant", models.ActionConfirm, nil, nil, "")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("got %v, want ErrNotParticipant", err)
	}
}

func TestSubmitConfirmationBeforeReportRejected(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)
	contest := seedContest(t, db, f)

	_, err := svc.SubmitConfirmation(contest.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, "")
	if !errors.Is(err, ErrContestNotAwaitingConfirmation) {
		t.Fatalf("got %v, want ErrContestNotAwaitingConfirmation", err)
	}
}

func TestRatingUpdatesOnlyForFinalizedContests(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, false)
	svc := newConfirmationService(db)

	finalized := reportedContest(t, db, f)
	if _, err := svc.SubmitConfirmation(finalized.ID, f.PlayerB.ID, models.ActionConfirm, nil, nil, ""); err != nil {
		t.Fatal(err)
	}
	disputed := reportedContest(t, db, f)
	if _, err := svc.SubmitConfirmation(disputed.ID, f.PlayerB.ID, models.ActionDispute, nil, nil, "nope"); err != nil {
		t.Fatal(err)
	}

	var contests []models.Contest
	if err := db.Find(&contests).Error; err != nil {
		t.Fatal(err)
	}
	for _, c := range contests {
		n := countRatingUpdates(t, db, c.ID)
		if c.Status == models.ContestFinalized && n != 2 {
			t.Errorf("finalized contest %s has %d rating updates, want 2", c.ID, n)
		}
		if c.Status != models.ContestFinalized && n != 0 {
			t.Errorf("non-finalized contest %s has %d rating updates, want 0", c.ID, n)
		}
	}
}
