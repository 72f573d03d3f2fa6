// services/submission_service.go
package services

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/models"
)

type SubmissionService struct {
	DB         *gorm.DB
	Engine     *engine.Engine
	Reputation *ReputationService
}

func NewSubmissionService(db *gorm.DB, eng *engine.Engine, reputation *ReputationService) *SubmissionService {
	return &SubmissionService{DB: db, Engine: eng, Reputation: reputation}
}

// ApplyToBounty registers the caller's submission link for a bounty.
func (s *SubmissionService) ApplyToBounty(c *fiber.Ctx) error {
	applicant := callerID(c)
	if applicant == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}

	var req struct {
		SubmissionLink string `json:"submission_link"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.SubmissionLink) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "submission_link is required"})
	}

	sub, err := s.Engine.ApplyToBounty(c.Context(), applicant, id, req.SubmissionLink)
	if err != nil {
		return respondError(c, err)
	}

	// reputation counters are a read model; the ledger already committed
	s.Reputation.RecordApplication(applicant)

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// UpdateSubmission replaces the caller's existing link while the window is open.
func (s *SubmissionService) UpdateSubmission(c *fiber.Ctx) error {
	applicant := callerID(c)
	if applicant == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}

	var req struct {
		NewSubmissionLink string `json:"new_submission_link"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.NewSubmissionLink) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "new_submission_link is required"})
	}

	sub, err := s.Engine.UpdateSubmission(c.Context(), applicant, id, req.NewSubmissionLink)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// GetMySubmissions lists everything the caller has submitted, newest first.
func (s *SubmissionService) GetMySubmissions(c *fiber.Ctx) error {
	applicant := callerID(c)
	if applicant == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}
	var subs []models.Submission
	if err := s.DB.Where("applicant = ?", applicant).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(subs)
}
