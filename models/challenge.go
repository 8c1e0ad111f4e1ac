package models

import "time"

// ChallengeStatus is a challenge's lifecycle state.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeDeclined  ChallengeStatus = "declined"
	ChallengeExpired   ChallengeStatus = "expired"
	ChallengeCompleted ChallengeStatus = "completed" // a contest was created from it
)

// Challenge is an invitation between two players within a league. An accepted
// challenge is the precondition for creating a Contest from it; pending
// challenges past their expiry are swept to expired.
type Challenge struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	LeagueID     string          `gorm:"index;not null" json:"league_id"`
	ChallengerID string          `gorm:"index;not null" json:"challenger_id"`
	ChallengeeID string          `gorm:"index;not null" json:"challengee_id"`
	Status       ChallengeStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Message      string          `json:"message,omitempty"`
	ExpiresAt    *time.Time      `gorm:"index" json:"expires_at,omitempty"`

	Timestamps
}
