// services/wallet_service.go
package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bounty-marketplace-system/models"
	"bounty-marketplace-system/workers"
)

// WalletService reads the custody wallet mirror kept fresh by the polling
// worker. Payout addresses shown on settled bounties come from here.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// GetWallet looks up one mirrored wallet by address.
func (s *WalletService) GetWallet(c *fiber.Ctx) error {
	address := c.Params("address")
	wallet, found, err := workers.GetWalletByAddress(s.DB, address)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
	}
	return c.JSON(wallet)
}

// GetUserWallets lists the mirrored payout wallets registered by one user.
func (s *WalletService) GetUserWallets(c *fiber.Ctx) error {
	var wallets []models.WalletMirror
	if err := s.DB.Where("user_id = ? AND is_active = ?", c.Params("user"), true).
		Find(&wallets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(wallets)
}

// GetTalentProfile returns the mirrored profile card for one wallet address.
func (s *WalletService) GetTalentProfile(c *fiber.Ctx) error {
	var profile models.TalentProfile
	if err := s.DB.Where("wallet_address = ?", c.Params("wallet")).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(profile)
}
