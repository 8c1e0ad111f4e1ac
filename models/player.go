package models

import (
	"time"

	"gorm.io/gorm"
)

// LadderPlayer is the competitive identity a user plays under. One external
// account may own several players (e.g. one per game), unique by
// (external account, display name). Profile fields may change; identity never does.
type LadderPlayer struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index:idx_players_account_name,unique;not null" json:"external_user_id"` // the profile service's UUID
	DisplayName    string `gorm:"index:idx_players_account_name,unique;not null" json:"display_name"`

	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
