package models

import "time"

// TransferKind separates winner payouts from the protocol fee in the audit trail.
type TransferKind string

const (
	TransferWinnerPayout TransferKind = "winner_payout"
	TransferProtocolFee  TransferKind = "protocol_fee"
)

// TransferRecord is the settlement audit row: one per token movement made
// when a bounty completes. Written in the same transaction as the
// Completed status, so the trail can never show a half-settled bounty.
type TransferRecord struct {
	ID       string       `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID uint32       `gorm:"not null;index" json:"bounty_id"`
	Kind     TransferKind `gorm:"type:varchar(16);not null" json:"kind"`

	Token     string `gorm:"not null" json:"token"`
	Recipient string `gorm:"not null;index" json:"recipient"` // wallet address
	Amount    Amount `gorm:"type:numeric(39,0);not null" json:"amount"`

	// Position is the winner rank this payout corresponds to (0 for the fee).
	Position int `json:"position"`

	// TxRef is whatever reference the custody service returned (tx hash etc.).
	TxRef string `json:"tx_ref,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
