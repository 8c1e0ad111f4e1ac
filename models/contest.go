package models

import "time"

// ContestStatus is a contest's lifecycle state. All transitions go through
// the transition table below; nothing compares raw status strings ad hoc.
type ContestStatus string

const (
	ContestAwaitingResult       ContestStatus = "awaiting_result"
	ContestAwaitingConfirmation ContestStatus = "awaiting_confirmation"
	ContestFinalized            ContestStatus = "finalized"
	ContestDisputed             ContestStatus = "disputed"
)

// contestTransitions is the authoritative lifecycle table. A disputed contest
// may only move forward via an administrative resolution; finalized is terminal.
var contestTransitions = map[ContestStatus][]ContestStatus{
	ContestAwaitingResult:       {ContestAwaitingConfirmation},
	ContestAwaitingConfirmation: {ContestFinalized, ContestDisputed},
	ContestDisputed:             {ContestFinalized},
}

func (s ContestStatus) CanTransitionTo(next ContestStatus) bool {
	for _, allowed := range contestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Contest is one head-to-head result awaiting or having received dual
// confirmation. Once finalized or disputed, scores and winner are immutable;
// only a dispute resolution may move a disputed contest onward.
type Contest struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	LeagueID    string  `gorm:"index;not null" json:"league_id"`
	Player1ID   string  `gorm:"index;not null" json:"player1_id"`
	Player2ID   string  `gorm:"index;not null" json:"player2_id"`
	ChallengeID *string `gorm:"uniqueIndex" json:"challenge_id,omitempty"` // nil = ad hoc contest

	Score1     int           `json:"score1"`
	Score2     int           `json:"score2"`
	WinnerID   string        `json:"winner_id"` // empty after a reported draw
	Status     ContestStatus `gorm:"type:varchar(32);not null;default:'awaiting_result'" json:"status"`
	ReportedBy string        `json:"reported_by"`

	// Relationships
	Confirmations []Confirmation `json:"confirmations,omitempty" gorm:"foreignKey:ContestID"`
	RatingUpdates []RatingUpdate `json:"rating_updates,omitempty" gorm:"foreignKey:ContestID"`

	Timestamps
}

// HasParticipant reports whether playerID is one of the two contestants.
func (c *Contest) HasParticipant(playerID string) bool {
	return playerID == c.Player1ID || playerID == c.Player2ID
}

// OtherParticipant returns the opponent of playerID, or "" for a non-participant.
func (c *Contest) OtherParticipant(playerID string) string {
	switch playerID {
	case c.Player1ID:
		return c.Player2ID
	case c.Player2ID:
		return c.Player1ID
	}
	return ""
}

// ConfirmationAction is a participant's response to a reported result.
type ConfirmationAction string

const (
	ActionConfirm ConfirmationAction = "confirm"
	ActionDispute ConfirmationAction = "dispute"
)

// Confirmation is one participant's authored response to a reported contest
// result. Append-only; at most one per (contest, player), enforced at the
// database level so concurrent duplicates cannot both land.
type Confirmation struct {
	ID        string             `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID string             `gorm:"index:idx_confirmations_contest_player,unique;not null" json:"contest_id"`
	PlayerID  string             `gorm:"index:idx_confirmations_contest_player,unique;not null" json:"player_id"`
	Action    ConfirmationAction `gorm:"type:varchar(16);not null" json:"action"`

	// The scores the author believes are correct; nil means "as reported".
	ClaimedScore1 *int   `json:"claimed_score1,omitempty"`
	ClaimedScore2 *int   `json:"claimed_score2,omitempty"`
	Reason        string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
