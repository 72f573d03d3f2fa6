package models

import (
	"time"

	"gorm.io/gorm"
)

// TalentProfile is a local snapshot of profile data needed for bounty cards.
// Owned and managed solely by this service; populated via sync worker from
// the profile service's user table.
type TalentProfile struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress     string     `gorm:"uniqueIndex;not null" json:"wallet_address"` // the on-chain identity everything keys on
	Username          string     `gorm:"index;not null" json:"username"`
	Email             string     `json:"email,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	IsBanned          bool       `json:"is_banned" gorm:"default:false"` // local marketplace ban

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RemoteUser matches the JSON payload of the profile service's user feed
// (read-only). Used by the sync worker.
type RemoteUser struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Bio               *string    `json:"bio,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	WalletAddress     string     `json:"wallet_address"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}
