package models

import "time"

// EngineConfig is the single-row replacement for the contract's global
// storage: the admin identity and the protocol fee account. Seeded once at
// boot, mutated only through the admin endpoints.
type EngineConfig struct {
	ID         uint   `gorm:"primaryKey" json:"-"` // always 1
	Admin      string `gorm:"not null" json:"admin"`
	FeeAccount string `gorm:"not null" json:"fee_account"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
