package models

import (
	"time"
)

// BadgeType: static config (seeded from BadgeTriggers at boot)
type BadgeType struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Code        string `gorm:"uniqueIndex;not null"` // e.g., "FIRST_WIN", "TOP_EARNER"
	Name        string `gorm:"not null"`             // "First Victory", "Top Earner"
	Description string
	IconURL     string           `gorm:"type:text"`
	Rarity      string           `gorm:"type:varchar(16);default:'common'"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"serializer:json;type:jsonb"`        // e.g., {"bounties_won": 1}
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

// UserBadge: awarded instance (many-to-many)
type UserBadge struct {
	ID            string    `gorm:"primaryKey;type:uuid"`
	WalletAddress string    `gorm:"index;not null"`
	BadgeTypeID   string    `gorm:"index;not null"`
	AwardedAt     time.Time `gorm:"autoCreateTime"`
	Metadata      string    `gorm:"type:jsonb"` // e.g., {"bounty_id": 42, "position": 1}
}

// Predefined badge triggers, checked after every settlement.
var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_APPLY",
		Name:        "In the Arena",
		Description: "Applied to your first bounty",
		Rarity:      "common",
		Threshold:   map[string]int64{"total_applications": 1},
	},
	{
		Code:        "FIRST_WIN",
		Name:        "First Victory",
		Description: "Won your first bounty",
		Rarity:      "common",
		Threshold:   map[string]int64{"bounties_won": 1},
	},
	{
		Code:        "CHAMPION",
		Name:        "Champion",
		Description: "Took first place on a bounty",
		Rarity:      "rare",
		Threshold:   map[string]int64{"first_place_wins": 1},
	},
	{
		Code:        "VETERAN",
		Name:        "Bounty Veteran",
		Description: "Won 10 bounties",
		Rarity:      "epic",
		Threshold:   map[string]int64{"bounties_won": 10},
	},
	{
		Code:        "SERIAL_CHAMP",
		Name:        "Serial Champion",
		Description: "Took first place 5 times",
		Rarity:      "legendary",
		Threshold:   map[string]int64{"first_place_wins": 5},
	},
}
