package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission = one applicant's claimed-work link for one bounty.
// One row per (bounty, applicant); updates overwrite the link in place.
type Submission struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID  uint32 `gorm:"not null;index;uniqueIndex:idx_bounty_applicant" json:"bounty_id"`
	Applicant string `gorm:"not null;index;uniqueIndex:idx_bounty_applicant" json:"applicant"` // wallet address

	Link string `gorm:"type:text;not null" json:"link"`

	// Ranking is nil until the bounty settles; winners get their position.
	Ranking *int `json:"ranking,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
