package models

import "time"

// VerificationLevel buckets talents by marketplace track record.
type VerificationLevel string

const (
	VerificationUnverified VerificationLevel = "UNVERIFIED"
	VerificationBasic      VerificationLevel = "BASIC"
	VerificationVerified   VerificationLevel = "VERIFIED"
	VerificationExpert     VerificationLevel = "EXPERT"
)

// TalentReputation tracks a talent's marketplace record (denormalized for
// performance). Updated after a settlement commits; the transfer audit
// trail stays the source of truth if the two ever disagree.
type TalentReputation struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"`

	// Activity counters
	TotalApplications int64 `json:"total_applications" gorm:"default:0"`
	BountiesWon       int64 `json:"bounties_won" gorm:"default:0"`
	FirstPlaceWins    int64 `json:"first_place_wins" gorm:"default:0"`

	// TotalEarned sums winner payouts across all tokens' smallest units;
	// per-token breakdown lives in the transfer audit trail.
	TotalEarned Amount `gorm:"type:numeric(39,0);default:0" json:"total_earned"`

	VerificationLevel VerificationLevel `gorm:"type:varchar(16);default:'UNVERIFIED'" json:"verification_level"`

	// SuccessRate = BountiesWon / TotalApplications (not stored)
	SuccessRate float64 `json:"success_rate" gorm:"-"`

	LastWonAt *time.Time `json:"last_won_at,omitempty"`

	Timestamps
}

// ComputeSuccessRate fills the derived field for API responses.
func (r *TalentReputation) ComputeSuccessRate() {
	if r.TotalApplications > 0 {
		r.SuccessRate = float64(r.BountiesWon) / float64(r.TotalApplications)
	}
}
