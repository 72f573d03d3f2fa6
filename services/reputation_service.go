// services/reputation_service.go
package services

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/models"
)

// ReputationService maintains the denormalized talent track record: win
// counters, earnings, verification level, and badge awards. It is a read
// model over the ledger — the transfer audit trail stays authoritative.
type ReputationService struct {
	DB *gorm.DB
}

func NewReputationService(db *gorm.DB) *ReputationService {
	return &ReputationService{DB: db}
}

// SeedBadgeTypes inserts the static badge catalog (idempotent, run at boot).
func (s *ReputationService) SeedBadgeTypes() error {
	for _, trigger := range models.BadgeTriggers {
		badge := trigger
		badge.ID = uuid.NewString()
		if err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *ReputationService) loadOrCreate(tx *gorm.DB, wallet string) (*models.TalentReputation, error) {
	var rep models.TalentReputation
	err := tx.Where("wallet_address = ?", wallet).First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rep = models.TalentReputation{
			ID:                uuid.NewString(),
			WalletAddress:     wallet,
			VerificationLevel: models.VerificationUnverified,
		}
		if err := tx.Create(&rep).Error; err != nil {
			return nil, err
		}
		return &rep, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// RecordApplication bumps the application counter after a successful apply.
func (s *ReputationService) RecordApplication(wallet string) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		rep, err := s.loadOrCreate(tx, wallet)
		if err != nil {
			return err
		}
		rep.TotalApplications++
		if err := tx.Save(rep).Error; err != nil {
			return err
		}
		return s.autoAwardBadges(tx, rep)
	})
	if err != nil {
		log.Printf("❌ [REPUTATION] failed to record application for %s: %v", wallet, err)
	}
}

// RecordSettlement credits every paid winner after a settlement commits.
func (s *ReputationService) RecordSettlement(result *engine.SettlementResult) {
	if result == nil {
		return
	}
	now := time.Now()
	for _, payout := range result.Payouts {
		p := payout
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			rep, err := s.loadOrCreate(tx, p.Winner)
			if err != nil {
				return err
			}
			rep.BountiesWon++
			if p.Position == 1 {
				rep.FirstPlaceWins++
			}
			rep.TotalEarned.Add(&rep.TotalEarned.Int, p.Amount)
			rep.LastWonAt = &now
			rep.VerificationLevel = verificationFor(rep)
			if err := tx.Save(rep).Error; err != nil {
				return err
			}
			return s.autoAwardBadges(tx, rep)
		})
		if err != nil {
			log.Printf("❌ [REPUTATION] failed to credit winner %s on bounty #%d: %v", p.Winner, result.Bounty.ID, err)
		}
	}
}

func verificationFor(rep *models.TalentReputation) models.VerificationLevel {
	switch {
	case rep.BountiesWon >= 10:
		return models.VerificationExpert
	case rep.BountiesWon >= 5:
		return models.VerificationVerified
	case rep.BountiesWon >= 1:
		return models.VerificationBasic
	default:
		return models.VerificationUnverified
	}
}

// autoAwardBadges checks all badge triggers for a talent after an update.
func (s *ReputationService) autoAwardBadges(tx *gorm.DB, rep *models.TalentReputation) error {
	var types []models.BadgeType
	if err := tx.Find(&types).Error; err != nil {
		return err
	}
	for _, badge := range types {
		if !meetsThreshold(rep, badge.Threshold) {
			continue
		}
		var count int64
		if err := tx.Model(&models.UserBadge{}).
			Where("wallet_address = ? AND badge_type_id = ?", rep.WalletAddress, badge.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		award := models.UserBadge{
			ID:            uuid.NewString(),
			WalletAddress: rep.WalletAddress,
			BadgeTypeID:   badge.ID,
		}
		if err := tx.Create(&award).Error; err != nil {
			return err
		}
		log.Printf("🎖️ Badge awarded: %s → %s", badge.Name, rep.WalletAddress)
	}
	return nil
}

func meetsThreshold(rep *models.TalentReputation, req map[string]int64) bool {
	if len(req) == 0 {
		return false
	}
	for key, required := range req {
		switch key {
		case "total_applications":
			if rep.TotalApplications < required {
				return false
			}
		case "bounties_won":
			if rep.BountiesWon < required {
				return false
			}
		case "first_place_wins":
			if rep.FirstPlaceWins < required {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- Handlers ---

// GetReputation returns one talent's marketplace record.
func (s *ReputationService) GetReputation(c *fiber.Ctx) error {
	wallet := c.Params("wallet")
	var rep models.TalentReputation
	if err := s.DB.Where("wallet_address = ?", wallet).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reputation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	rep.ComputeSuccessRate()
	return c.JSON(rep)
}

// GetBadges returns the badges a talent has earned.
func (s *ReputationService) GetBadges(c *fiber.Ctx) error {
	wallet := c.Params("wallet")
	var awards []models.UserBadge
	if err := s.DB.Where("wallet_address = ?", wallet).
		Order("awarded_at DESC").
		Find(&awards).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if len(awards) == 0 {
		return c.JSON([]fiber.Map{})
	}
	ids := make([]string, len(awards))
	for i, a := range awards {
		ids[i] = a.BadgeTypeID
	}
	var types []models.BadgeType
	if err := s.DB.Where("id IN ?", ids).Find(&types).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	byID := make(map[string]models.BadgeType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	out := make([]fiber.Map, len(awards))
	for i, a := range awards {
		t := byID[a.BadgeTypeID]
		out[i] = fiber.Map{
			"code":        t.Code,
			"name":        t.Name,
			"description": t.Description,
			"rarity":      t.Rarity,
			"awarded_at":  a.AwardedAt,
		}
	}
	return c.JSON(out)
}
