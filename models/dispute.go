package models

import "time"

// DisputeResolution is the audit record written whenever an administrator
// resolves a disputed contest. The audit export worker ships unexported rows
// to the administrative-action sink; the resolving transaction never waits on it.
type DisputeResolution struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID  string `gorm:"index;not null" json:"contest_id"`
	ResolvedBy string `gorm:"not null" json:"resolved_by"` // external admin user id

	FinalScore1 int    `json:"final_score1"`
	FinalScore2 int    `json:"final_score2"`
	WinnerID    string `json:"winner_id"`
	Note        string `json:"note,omitempty"`

	Exported   bool       `gorm:"default:false;index" json:"exported"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// DisputeEvidence is a file a participant attached to a disputed contest
// (screenshot, replay, chat log). The object itself lives in R2; this row is
// only the metadata.
type DisputeEvidence struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID  string `gorm:"index;not null" json:"contest_id"`
	UploadedBy string `gorm:"not null" json:"uploaded_by"` // player id

	FileURL     string `gorm:"not null" json:"file_url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Note        string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
