package engine

import (
	"context"
	"math/big"

	"bounty-marketplace-system/models"
)

// TransferRequest is one token movement the engine wants executed.
// From is the logical escrow source ("escrow:bounty:<id>"); the custody
// service resolves it to the funded account.
type TransferRequest struct {
	Token    string              `json:"token"`
	From     string              `json:"from"`
	To       string              `json:"to"`
	Amount   *big.Int            `json:"amount"`
	Kind     models.TransferKind `json:"kind"`
	Position int                 `json:"position"` // winner rank, 0 for the fee
}

// TransferResult reports the external reference for an executed transfer.
type TransferResult struct {
	TxRef string `json:"tx_ref"`
}

// Transferer executes a settlement's transfers as one all-or-nothing batch.
// If it returns an error the engine aborts the whole transition: the bounty
// stays in its pre-settlement state and no audit rows are written.
type Transferer interface {
	Execute(ctx context.Context, bountyID uint32, transfers []TransferRequest) ([]TransferResult, error)
}
