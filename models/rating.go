package models

import "time"

// PlayerRating is the current skill value of one player in one league.
// Created lazily the first time the rating is touched; mutated exclusively by
// the rating engine inside the finalize transaction. Invariant:
// GamesPlayed = Wins + Losses + Draws.
type PlayerRating struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID string `gorm:"index:idx_ratings_player_league,unique;not null" json:"player_id"`
	LeagueID string `gorm:"index:idx_ratings_player_league,unique;not null" json:"league_id"`

	Rating      int   `gorm:"not null" json:"rating"`
	GamesPlayed int64 `gorm:"default:0" json:"games_played"`
	Wins        int64 `gorm:"default:0" json:"wins"`
	Losses      int64 `gorm:"default:0" json:"losses"`
	Draws       int64 `gorm:"default:0" json:"draws"`

	// Relationships
	Player LadderPlayer `json:"player,omitempty" gorm:"foreignKey:PlayerID;references:ID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RatingUpdate is the immutable audit record of one player's rating change
// from one finalized contest. Exactly one pair of rows exists per finalized
// contest; the unique (contest, player) key is what makes a retried finalize
// a no-op instead of a double application.
type RatingUpdate struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID string `gorm:"index:idx_rating_updates_contest_player,unique;not null" json:"contest_id"`
	PlayerID  string `gorm:"index:idx_rating_updates_contest_player,unique;not null" json:"player_id"`
	LeagueID  string `gorm:"index;not null" json:"league_id"`

	RatingBefore int `gorm:"not null" json:"rating_before"`
	RatingAfter  int `gorm:"not null" json:"rating_after"`
	Change       int `gorm:"not null" json:"change"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
