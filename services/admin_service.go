// services/admin_service.go
package services

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bounty-marketplace-system/engine"
)

type AdminService struct {
	Engine *engine.Engine
}

func NewAdminService(eng *engine.Engine) *AdminService {
	return &AdminService{Engine: eng}
}

// GetConfig returns the current admin and fee account.
func (s *AdminService) GetConfig(c *fiber.Ctx) error {
	cfg, err := s.Engine.Config(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

// UpdateAdmin reassigns the admin identity (current admin only).
func (s *AdminService) UpdateAdmin(c *fiber.Ctx) error {
	var req struct {
		NewAdmin string `json:"new_admin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	previous, err := s.Engine.UpdateAdmin(c.Context(), callerID(c), strings.TrimSpace(req.NewAdmin))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"previous_admin": previous})
}

// UpdateFeeAccount reassigns the protocol fee account (current admin only).
func (s *AdminService) UpdateFeeAccount(c *fiber.Ctx) error {
	var req struct {
		NewFeeAccount string `json:"new_fee_account"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	previous, err := s.Engine.UpdateFeeAccount(c.Context(), callerID(c), strings.TrimSpace(req.NewFeeAccount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"previous_fee_account": previous})
}
