package models

import (
	"time"

	"gorm.io/gorm"
)

// BountyStatus mirrors the on-chain lifecycle: Active → InReview → Completed.
type BountyStatus string

const (
	StatusActive    BountyStatus = "Active"
	StatusInReview  BountyStatus = "InReview"
	StatusCompleted BountyStatus = "Completed"
)

// BountyCategory is free-form marketplace metadata shown on cards.
type BountyCategory string

const (
	CategoryDevelopment BountyCategory = "DEVELOPMENT"
	CategoryDesign      BountyCategory = "DESIGN"
	CategoryMarketing   BountyCategory = "MARKETING"
	CategoryResearch    BountyCategory = "RESEARCH"
	CategoryOther       BountyCategory = "OTHER"
)

// Bounty is the authoritative ledger record for one posted task.
// The engine package is the only writer; everything else reads.
type Bounty struct {
	ID    uint32 `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner string `json:"owner" gorm:"index;not null"` // creator wallet address, immutable
	Token string `json:"token" gorm:"index;not null"` // reward asset contract id, immutable

	// Reward is the full amount in the token's smallest unit (i128 scale).
	Reward Amount `json:"reward" gorm:"type:numeric(39,0);not null"`

	// Distribution is the ranked percentage split; validated to sum to 100.
	// Frozen together with title/deadline once the first submission lands.
	Distribution DistributionList `json:"distribution" gorm:"type:jsonb;not null"`

	Title       string         `json:"title" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"index"`
	Description string         `json:"description" gorm:"type:text"`
	Category    BountyCategory `json:"category" gorm:"type:varchar(32);default:'OTHER'"`
	Skills      StringList     `json:"skills" gorm:"type:jsonb"`
	SponsorName string         `json:"sponsor_name"`

	SubmissionDeadline time.Time `json:"submission_deadline" gorm:"not null;index"`
	JudgingDeadline    time.Time `json:"judging_deadline" gorm:"not null;index"`

	Status BountyStatus `json:"status" gorm:"type:varchar(16);not null;default:'Active';index"`

	// Winners is set exactly once, atomically with the Completed write.
	// Order is rank order (index 0 = position 1).
	Winners     StringList `json:"winners" gorm:"type:jsonb"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:BountyID"`

	// Calculated fields (not stored in DB)
	Applicants      []string `json:"applicants,omitempty" gorm:"-"`
	SubmissionCount int64    `json:"submission_count" gorm:"-"`
}

// MiniBounty is a trimmed card view for listings.
type MiniBounty struct {
	ID                 uint32           `json:"id"`
	Owner              string           `json:"owner"`
	Token              string           `json:"token"`
	Reward             Amount           `json:"reward"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug"`
	Category           BountyCategory   `json:"category"`
	Status             BountyStatus     `json:"status"`
	SponsorName        string           `json:"sponsor_name,omitempty"`
	Distribution       DistributionList `json:"distribution"`
	SubmissionDeadline time.Time        `json:"submission_deadline"`
	JudgingDeadline    time.Time        `json:"judging_deadline"`
	SubmissionCount    int64            `json:"submission_count"`
	CreatedAt          time.Time        `json:"created_at"`
}

func (b *Bounty) Mini(submissionCount int64) MiniBounty {
	return MiniBounty{
		ID:                 b.ID,
		Owner:              b.Owner,
		Token:              b.Token,
		Reward:             b.Reward,
		Title:              b.Title,
		Slug:               b.Slug,
		Category:           b.Category,
		Status:             b.Status,
		SponsorName:        b.SponsorName,
		Distribution:       b.Distribution,
		SubmissionDeadline: b.SubmissionDeadline,
		JudgingDeadline:    b.JudgingDeadline,
		SubmissionCount:    submissionCount,
		CreatedAt:          b.CreatedAt,
	}
}

// Query scopes — the by-owner/by-token/by-status access index is just the
// declared DB indexes plus these filters, so it can never drift from the ledger.

func ScopeOwner(owner string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner = ?", owner)
	}
}

func ScopeToken(token string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("token = ?", token)
	}
}

func ScopeStatus(status BountyStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

// ScopeOpen is the "active" convenience set: still Active and still
// accepting submissions at the given instant.
func ScopeOpen(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND submission_deadline >= ?", StatusActive, now)
	}
}
