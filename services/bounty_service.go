// services/bounty_service.go
package services

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/models"
)

type BountyService struct {
	DB     *gorm.DB
	Engine *engine.Engine
}

func NewBountyService(db *gorm.DB, eng *engine.Engine) *BountyService {
	return &BountyService{DB: db, Engine: eng}
}

func parseBountyID(c *fiber.Ctx) (uint32, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

// --- Owner handlers ---

// CreateBounty posts a new bounty; the authenticated caller becomes owner.
func (s *BountyService) CreateBounty(c *fiber.Ctx) error {
	owner := callerID(c)
	if owner == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	var req struct {
		Token              string                     `json:"token"`
		Reward             string                     `json:"reward"` // smallest unit, decimal string
		Distribution       []models.DistributionShare `json:"distribution"`
		SubmissionDeadline time.Time                  `json:"submission_deadline"`
		JudgingDeadline    time.Time                  `json:"judging_deadline"`
		Title              string                     `json:"title"`
		Description        string                     `json:"description"`
		Category           models.BountyCategory      `json:"category"`
		Skills             []string                   `json:"skills"`
		SponsorName        string                     `json:"sponsor_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}
	reward, ok := models.AmountFromString(req.Reward)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reward must be a decimal integer string"})
	}

	bounty, err := s.Engine.CreateBounty(c.Context(), engine.CreateParams{
		Owner:              owner,
		Token:              req.Token,
		Reward:             reward.BigInt(),
		Distribution:       req.Distribution,
		SubmissionDeadline: req.SubmissionDeadline,
		JudgingDeadline:    req.JudgingDeadline,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Skills:             req.Skills,
		SponsorName:        req.SponsorName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bounty)
}

// UpdateBounty edits an Active bounty with no submissions yet.
func (s *BountyService) UpdateBounty(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}

	var req struct {
		NewTitle              *string                    `json:"new_title"`
		NewDescription        *string                    `json:"new_description"`
		NewCategory           *models.BountyCategory     `json:"new_category"`
		NewSkills             []string                   `json:"new_skills"`
		NewDistribution       []models.DistributionShare `json:"new_distribution"`
		NewSubmissionDeadline *time.Time                 `json:"new_submission_deadline"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	bounty, err := s.Engine.UpdateBounty(c.Context(), callerID(c), id, engine.UpdateParams{
		NewTitle:              req.NewTitle,
		NewDescription:        req.NewDescription,
		NewCategory:           req.NewCategory,
		NewSkills:             req.NewSkills,
		NewDistribution:       req.NewDistribution,
		NewSubmissionDeadline: req.NewSubmissionDeadline,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bounty)
}

// DeleteBounty removes an Active bounty with no submissions.
func (s *BountyService) DeleteBounty(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	if err := s.Engine.DeleteBounty(c.Context(), callerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bounty deleted successfully"})
}

// --- Public read handlers ---

func (s *BountyService) GetBounty(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	bounty, err := s.Engine.GetBounty(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bounty)
}

func (s *BountyService) GetBountyStatus(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	status, err := s.Engine.GetBountyStatus(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bounty_id": id, "status": status})
}

func (s *BountyService) GetBountyWinners(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	winners, err := s.Engine.GetBountyWinners(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bounty_id": id, "winners": winners})
}

func (s *BountyService) GetBountyApplicants(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	applicants, err := s.Engine.GetBountyApplicants(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bounty_id": id, "applicants": applicants})
}

func (s *BountyService) GetBountySubmissions(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	subs, err := s.Engine.GetBountySubmissions(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}

func (s *BountyService) GetBountyPayouts(c *fiber.Ctx) error {
	id, ok := parseBountyID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty ID"})
	}
	payouts, err := s.Engine.GetBountyPayouts(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payouts)
}

// --- Listing handlers (the query index: scopes over declared DB indexes) ---

// GetAllBounties lists bounty cards, optionally filtered by query params
// status, token, owner, open=true.
func (s *BountyService) GetAllBounties(c *fiber.Ctx) error {
	query := s.DB.Model(&models.Bounty{})

	if status := c.Query("status"); status != "" {
		query = query.Scopes(models.ScopeStatus(models.BountyStatus(status)))
	}
	if token := c.Query("token"); token != "" {
		query = query.Scopes(models.ScopeToken(token))
	}
	if owner := c.Query("owner"); owner != "" {
		query = query.Scopes(models.ScopeOwner(owner))
	}
	if strings.EqualFold(c.Query("open"), "true") {
		query = query.Scopes(models.ScopeOpen(time.Now()))
	}

	limit := 50
	if l, err := strconv.Atoi(c.Query("limit", "50")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	var bounties []models.Bounty
	if err := query.Order("created_at DESC").Limit(limit).Find(&bounties).Error; err != nil {
		log.Printf("DB Error fetching bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bounties"})
	}
	return c.JSON(s.toMiniList(bounties))
}

// GetOpenBounties is the "active" convenience listing.
func (s *BountyService) GetOpenBounties(c *fiber.Ctx) error {
	var bounties []models.Bounty
	if err := s.DB.Scopes(models.ScopeOpen(time.Now())).
		Order("submission_deadline ASC").
		Find(&bounties).Error; err != nil {
		log.Printf("DB Error fetching open bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bounties"})
	}
	return c.JSON(s.toMiniList(bounties))
}

// GetOwnerBounties lists bounties created by one identity.
func (s *BountyService) GetOwnerBounties(c *fiber.Ctx) error {
	owner := c.Params("owner")
	var bounties []models.Bounty
	if err := s.DB.Scopes(models.ScopeOwner(owner)).
		Order("created_at DESC").
		Find(&bounties).Error; err != nil {
		log.Printf("DB Error fetching owner bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bounties"})
	}
	return c.JSON(s.toMiniList(bounties))
}

func (s *BountyService) GetOwnerBountiesCount(c *fiber.Ctx) error {
	var count int64
	if err := s.DB.Model(&models.Bounty{}).
		Scopes(models.ScopeOwner(c.Params("owner"))).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetUserBounties lists bounties the identity has applied to.
func (s *BountyService) GetUserBounties(c *fiber.Ctx) error {
	user := c.Params("user")
	var ids []uint32
	if err := s.DB.Model(&models.Submission{}).
		Where("applicant = ?", user).
		Pluck("bounty_id", &ids).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if len(ids) == 0 {
		return c.JSON([]models.MiniBounty{})
	}
	var bounties []models.Bounty
	if err := s.DB.Where("id IN ?", ids).Order("created_at DESC").Find(&bounties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(s.toMiniList(bounties))
}

func (s *BountyService) GetUserBountiesCount(c *fiber.Ctx) error {
	var count int64
	if err := s.DB.Model(&models.Submission{}).
		Where("applicant = ?", c.Params("user")).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetBountiesByToken lists bounties paying in one asset.
func (s *BountyService) GetBountiesByToken(c *fiber.Ctx) error {
	var bounties []models.Bounty
	if err := s.DB.Scopes(models.ScopeToken(c.Params("token"))).
		Order("created_at DESC").
		Find(&bounties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(s.toMiniList(bounties))
}

func (s *BountyService) GetBountiesByTokenCount(c *fiber.Ctx) error {
	var count int64
	if err := s.DB.Model(&models.Bounty{}).
		Scopes(models.ScopeToken(c.Params("token"))).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetBountiesByStatus lists bounties in one lifecycle state.
func (s *BountyService) GetBountiesByStatus(c *fiber.Ctx) error {
	status := models.BountyStatus(c.Params("status"))
	switch status {
	case models.StatusActive, models.StatusInReview, models.StatusCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}
	var bounties []models.Bounty
	if err := s.DB.Scopes(models.ScopeStatus(status)).
		Order("created_at DESC").
		Find(&bounties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(s.toMiniList(bounties))
}

func (s *BountyService) GetBountiesByStatusCount(c *fiber.Ctx) error {
	status := models.BountyStatus(c.Params("status"))
	switch status {
	case models.StatusActive, models.StatusInReview, models.StatusCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}
	var count int64
	if err := s.DB.Model(&models.Bounty{}).
		Scopes(models.ScopeStatus(status)).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"count": count})
}

func (s *BountyService) GetBountiesCount(c *fiber.Ctx) error {
	var count int64
	if err := s.DB.Model(&models.Bounty{}).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"count": count})
}

func (s *BountyService) toMiniList(bounties []models.Bounty) []models.MiniBounty {
	if len(bounties) == 0 {
		return []models.MiniBounty{}
	}
	ids := make([]uint32, len(bounties))
	for i, b := range bounties {
		ids[i] = b.ID
	}
	// one grouped count query instead of n
	type row struct {
		BountyID uint32
		N        int64
	}
	var rows []row
	counts := make(map[uint32]int64, len(ids))
	if err := s.DB.Model(&models.Submission{}).
		Select("bounty_id, count(*) as n").
		Where("bounty_id IN ?", ids).
		Group("bounty_id").
		Scan(&rows).Error; err == nil {
		for _, r := range rows {
			counts[r.BountyID] = r.N
		}
	}
	out := make([]models.MiniBounty, len(bounties))
	for i := range bounties {
		out[i] = bounties[i].Mini(counts[bounties[i].ID])
	}
	return out
}
