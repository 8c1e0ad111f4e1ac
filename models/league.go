package models

// League is a named competition context. Created by an administrator; its
// identity is immutable once contests reference it.
type League struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	GameType    string `gorm:"not null" json:"game_type"` // e.g. "chess", "table_tennis"
	AllowsDraws bool   `gorm:"default:false" json:"allows_draws"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"` // external admin user id

	Timestamps
}
