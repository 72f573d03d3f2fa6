// services/settlement_service.go
package services

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bounty-marketplace-system/engine"
)

type SettlementService struct {
	DB         *gorm.DB
	Engine     *engine.Engine
	Reputation *ReputationService
}

func NewSettlementService(db *gorm.DB, eng *engine.Engine, reputation *ReputationService) *SettlementService {
	return &SettlementService{DB: db, Engine: eng, Reputation: reputation}
}

// SelectWinners settles a bounty: the owner submits the ranked winner list,
// the engine pays out and flips the status to Completed atomically.
func (s *SettlementService) SelectWinners(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}

	var req struct {
		Winners []string `json:"winners"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := s.Engine.SelectWinners(c.Context(), callerID(c), id, req.Winners)
	if err != nil {
		return respondError(c, err)
	}

	// the ledger committed; update the denormalized talent records
	s.Reputation.RecordSettlement(result)

	payouts := make([]fiber.Map, len(result.Payouts))
	for i, p := range result.Payouts {
		payouts[i] = fiber.Map{
			"winner":   p.Winner,
			"position": p.Position,
			"amount":   p.Amount.String(),
		}
	}
	return c.JSON(fiber.Map{
		"message": "Winners selected and payouts settled",
		"bounty":  result.Bounty,
		"payouts": payouts,
		"fee":     result.Fee.String(),
	})
}

// CheckJudging is the public idempotent state-advance call; anyone may poke
// a bounty past its deadlines.
func (s *SettlementService) CheckJudging(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	bounty, changed, err := s.Engine.CheckJudging(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"bounty_id": bounty.ID,
		"status":    bounty.Status,
		"changed":   changed,
	})
}
