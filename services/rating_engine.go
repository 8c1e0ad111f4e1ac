package services

import (
	"errors"
	"fmt"

	"github.com/UziB26/leagueladder-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingEngine converts a finalized contest into rating changes for both
// participants. It is only ever invoked from inside the transaction that flips
// the contest to finalized — never on its own — so the status flip, the
// PlayerRating mutations and the RatingUpdate audit rows commit or abort
// together.
type RatingEngine struct {
	DefaultRating int
	K             KPolicy
}

func NewRatingEngine(cfg EloConfig) *RatingEngine {
	return &RatingEngine{
		DefaultRating: cfg.DefaultRating,
		K:             cfg.KPolicy(),
	}
}

// EnsureRating loads the (player, league) rating row for update, creating it
// at the default rating on first touch.
func (e *RatingEngine) EnsureRating(tx *gorm.DB, playerID, leagueID string) (*models.PlayerRating, error) {
	var rating models.PlayerRating
	err := lockForUpdate(tx).
		Where("player_id = ? AND league_id = ?", playerID, leagueID).
		First(&rating).Error
	if err == nil {
		return &rating, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rating = models.PlayerRating{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		LeagueID: leagueID,
		Rating:   e.DefaultRating,
	}
	if err := tx.Create(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another transaction created it first — reread under lock
			if err := lockForUpdate(tx).
				Where("player_id = ? AND league_id = ?", playerID, leagueID).
				First(&rating).Error; err != nil {
				return nil, err
			}
			return &rating, nil
		}
		return nil, fmt.Errorf("failed to create rating row for player %s: %w", playerID, err)
	}
	return &rating, nil
}

// actualScores maps the contest's derived winner onto Elo actual scores
// (1 win, 0.5 draw, 0 loss) for player1 and player2.
func actualScores(contest *models.Contest) (float64, float64) {
	switch contest.WinnerID {
	case contest.Player1ID:
		return 1, 0
	case contest.Player2ID:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// ApplyResult updates both participants' ratings from the contest's derived
// winner and writes one immutable RatingUpdate audit row per player. K can
// differ per player (games-played taper), so the two deltas need not be
// symmetric; each player's before/after/change triple is always consistent.
//
// A duplicate-key error on rating_updates means another transaction already
// finalized this contest; it is returned as-is so the caller rolls the whole
// transaction back and rereads the existing outcome.
func (e *RatingEngine) ApplyResult(tx *gorm.DB, contest *models.Contest) ([]models.RatingUpdate, error) {
	r1, err := e.EnsureRating(tx, contest.Player1ID, contest.LeagueID)
	if err != nil {
		return nil, err
	}
	r2, err := e.EnsureRating(tx, contest.Player2ID, contest.LeagueID)
	if err != nil {
		return nil, err
	}

	// expectations must use both prior ratings, before either row mutates
	before1, before2 := r1.Rating, r2.Rating
	s1, s2 := actualScores(contest)

	u1, err := e.applyOne(tx, contest, r1, before2, s1)
	if err != nil {
		return nil, err
	}
	u2, err := e.applyOne(tx, contest, r2, before1, s2)
	if err != nil {
		return nil, err
	}
	return []models.RatingUpdate{*u1, *u2}, nil
}

func (e *RatingEngine) applyOne(tx *gorm.DB, contest *models.Contest, rating *models.PlayerRating, opponentBefore int, actual float64) (*models.RatingUpdate, error) {
	expected := expectedScore(rating.Rating, opponentBefore)
	delta := ratingDelta(e.K(rating.GamesPlayed), actual, expected)

	before := rating.Rating
	rating.Rating += delta
	rating.GamesPlayed++
	switch actual {
	case 1:
		rating.Wins++
	case 0:
		rating.Losses++
	default:
		rating.Draws++
	}
	if err := tx.Save(rating).Error; err != nil {
		return nil, err
	}

	update := models.RatingUpdate{
		ID:           uuid.NewString(),
		ContestID:    contest.ID,
		PlayerID:     rating.PlayerID,
		LeagueID:     contest.LeagueID,
		RatingBefore: before,
		RatingAfter:  rating.Rating,
		Change:       delta,
	}
	if err := tx.Create(&update).Error; err != nil {
		return nil, err
	}
	return &update, nil
}
