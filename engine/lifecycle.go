package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bounty-marketplace-system/models"
)

// CreateParams carries everything create_bounty needs. Owner and Token are
// validated as non-empty by the HTTP layer before they reach the engine.
type CreateParams struct {
	Owner              string
	Token              string
	Reward             *big.Int
	Distribution       []models.DistributionShare
	SubmissionDeadline time.Time
	JudgingDeadline    time.Time
	Title              string
	Description        string
	Category           models.BountyCategory
	Skills             []string
	SponsorName        string
}

// UpdateParams are the owner-editable fields; nil pointers mean "unchanged".
// Distribution is always supplied in full and revalidated.
type UpdateParams struct {
	NewTitle              *string
	NewDescription        *string
	NewCategory           *models.BountyCategory
	NewSkills             []string
	NewDistribution       []models.DistributionShare
	NewSubmissionDeadline *time.Time
}

// SettlementResult is what SelectWinners hands back after the Completed
// write commits: the final record plus the exact amounts moved.
type SettlementResult struct {
	Bounty  *models.Bounty
	Payouts []Payout
	Fee     *big.Int
}

func escrowSource(bountyID uint32) string {
	return fmt.Sprintf("escrow:bounty:%d", bountyID)
}

// CreateBounty validates and persists a new Active bounty, assigning the
// next monotonically increasing id.
func (e *Engine) CreateBounty(ctx context.Context, p CreateParams) (*models.Bounty, error) {
	if isZeroIdentity(p.Owner) || isZeroIdentity(p.Token) {
		return nil, internalf("create: empty owner or token")
	}
	if p.Reward == nil || p.Reward.Sign() <= 0 {
		return nil, ErrInvalidReward
	}
	dist, err := ValidateDistribution(p.Distribution)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if !p.SubmissionDeadline.After(now) {
		return nil, ErrBountyDeadlinePassed
	}
	if !p.JudgingDeadline.After(p.SubmissionDeadline) {
		return nil, ErrJudgingDeadlineMustBeAfterSubmissionDeadline
	}
	category := p.Category
	if category == "" {
		category = models.CategoryOther
	}

	b := &models.Bounty{
		Owner:              p.Owner,
		Token:              p.Token,
		Reward:             models.Amount{Int: *new(big.Int).Set(p.Reward)},
		Distribution:       dist,
		Title:              p.Title,
		Slug:               slug.Make(p.Title),
		Description:        p.Description,
		Category:           category,
		Skills:             models.StringList(p.Skills),
		SponsorName:        p.SponsorName,
		SubmissionDeadline: p.SubmissionDeadline,
		JudgingDeadline:    p.JudgingDeadline,
		Status:             models.StatusActive,
		Winners:            models.StringList{},
	}
	if err := e.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, internalf("create bounty: %v", err)
	}
	log.Printf("✅ [BOUNTY] created #%d %q by %s (reward %s %s)", b.ID, b.Title, b.Owner, b.Reward.String(), b.Token)
	return b, nil
}

// UpdateBounty edits title/metadata/distribution/deadline while the bounty
// is still Active and untouched by submissions (the edit-lock). The
// submission deadline may only move later, never earlier.
func (e *Engine) UpdateBounty(ctx context.Context, caller string, bountyID uint32, p UpdateParams) (*models.Bounty, error) {
	var updated *models.Bounty
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		if caller != b.Owner {
			return ErrOnlyOwner
		}
		if b.Status != models.StatusActive {
			return ErrInactiveBounty
		}
		n, err := countSubmissions(tx, bountyID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBountyHasSubmissions
		}

		if p.NewDistribution != nil {
			dist, err := ValidateDistribution(p.NewDistribution)
			if err != nil {
				return err
			}
			b.Distribution = dist
		}
		if p.NewTitle != nil {
			b.Title = *p.NewTitle
			b.Slug = slug.Make(*p.NewTitle)
		}
		if p.NewDescription != nil {
			b.Description = *p.NewDescription
		}
		if p.NewCategory != nil {
			b.Category = *p.NewCategory
		}
		if p.NewSkills != nil {
			b.Skills = models.StringList(p.NewSkills)
		}
		if p.NewSubmissionDeadline != nil {
			next := *p.NewSubmissionDeadline
			if next.Before(b.SubmissionDeadline) || !next.After(e.now()) {
				return ErrInvalidDeadlineUpdate
			}
			if !b.JudgingDeadline.After(next) {
				return ErrJudgingDeadlineMustBeAfterSubmissionDeadline
			}
			b.SubmissionDeadline = next
		}

		if err := tx.Save(b).Error; err != nil {
			return internalf("save bounty %d: %v", bountyID, err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBounty removes an Active bounty that nobody has applied to yet.
func (e *Engine) DeleteBounty(ctx context.Context, caller string, bountyID uint32) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		if caller != b.Owner {
			return ErrOnlyOwner
		}
		if b.Status != models.StatusActive {
			return ErrInactiveBounty
		}
		n, err := countSubmissions(tx, bountyID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBountyHasSubmissions
		}
		if err := tx.Delete(&models.Bounty{}, "id = ?", bountyID).Error; err != nil {
			return internalf("delete bounty %d: %v", bountyID, err)
		}
		log.Printf("🗑️  [BOUNTY] deleted #%d by owner %s", bountyID, caller)
		return nil
	})
}

// ApplyToBounty registers one submission per applicant while the bounty is
// Active and the submission window is open. Owners cannot apply to their
// own bounty.
func (e *Engine) ApplyToBounty(ctx context.Context, applicant string, bountyID uint32, link string) (*models.Submission, error) {
	if isZeroIdentity(applicant) {
		return nil, internalf("apply: empty applicant")
	}
	var created *models.Submission
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		if b.Status != models.StatusActive {
			return ErrInactiveBounty
		}
		now := e.now()
		if now.After(b.SubmissionDeadline) {
			return ErrBountyDeadlinePassed
		}
		if applicant == b.Owner {
			return ErrOwnerCannotApply
		}
		var existing int64
		if err := tx.Model(&models.Submission{}).
			Where("bounty_id = ? AND applicant = ?", bountyID, applicant).
			Count(&existing).Error; err != nil {
			return internalf("check existing submission: %v", err)
		}
		if existing > 0 {
			return ErrAlreadyApplied
		}
		sub := &models.Submission{
			ID:        uuid.NewString(),
			BountyID:  bountyID,
			Applicant: applicant,
			Link:      link,
		}
		if err := tx.Create(sub).Error; err != nil {
			return internalf("create submission: %v", err)
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("📬 [SUBMIT] %s applied to bounty #%d", applicant, bountyID)
	return created, nil
}

// UpdateSubmission replaces an applicant's existing link while the window
// is still open.
func (e *Engine) UpdateSubmission(ctx context.Context, applicant string, bountyID uint32, newLink string) (*models.Submission, error) {
	var updated *models.Submission
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		if b.Status != models.StatusActive {
			return ErrInactiveBounty
		}
		if e.now().After(b.SubmissionDeadline) {
			return ErrBountyDeadlinePassed
		}
		var sub models.Submission
		if err := tx.First(&sub, "bounty_id = ? AND applicant = ?", bountyID, applicant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return internalf("load submission: %v", err)
		}
		sub.Link = newLink
		if err := tx.Save(&sub).Error; err != nil {
			return internalf("save submission: %v", err)
		}
		updated = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CheckJudging is the idempotent housekeeping transition, safe to call from
// anyone (or a scheduler) as often as wanted:
//
//   - past the submission deadline an Active bounty moves to InReview;
//   - past the judging deadline an unfinished bounty is force-completed
//     with no winners (judging abandoned — the safety valve, not the normal
//     path; escrowed funds stay with the treasury).
//
// Returns the bounty and whether this call changed anything.
func (e *Engine) CheckJudging(ctx context.Context, bountyID uint32) (*models.Bounty, bool, error) {
	var result *models.Bounty
	changed := false
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		now := e.now()
		if b.Status == models.StatusActive && now.After(b.SubmissionDeadline) {
			b.Status = models.StatusInReview
			changed = true
		}
		if b.Status != models.StatusCompleted && now.After(b.JudgingDeadline) {
			completedAt := now
			b.Status = models.StatusCompleted
			b.Winners = models.StringList{}
			b.CompletedAt = &completedAt
			changed = true
			log.Printf("⚠️  [JUDGING] bounty #%d force-completed with no winners (judging deadline passed)", b.ID)
		}
		if !changed {
			result = b
			return nil
		}
		if err := tx.Save(b).Error; err != nil {
			return internalf("save bounty %d: %v", bountyID, err)
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}

// SelectWinners settles the bounty: computes payouts from the distribution
// table, executes the transfers through the custody collaborator, and
// atomically records winners + Completed. Argument order defines rank. A
// transfer failure aborts the entire transition.
func (e *Engine) SelectWinners(ctx context.Context, caller string, bountyID uint32, winners []string) (*SettlementResult, error) {
	if e.transfer == nil {
		return nil, internalf("no transfer mechanism configured")
	}
	var result *SettlementResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBounty(tx, bountyID)
		if err != nil {
			return err
		}
		if caller != b.Owner {
			return ErrOnlyOwner
		}
		if b.Status == models.StatusCompleted {
			return ErrInactiveBounty
		}
		now := e.now()
		if now.After(b.JudgingDeadline) {
			return ErrJudgingDeadlinePassed
		}
		if len(winners) == 0 {
			return ErrNotEnoughWinners
		}
		if len(winners) > len(b.Distribution) {
			return ErrTooManyWinners
		}
		seen := make(map[string]struct{}, len(winners))
		for _, w := range winners {
			if isZeroIdentity(w) {
				return ErrInvalidWinner
			}
			if _, dup := seen[w]; dup {
				return ErrDuplicateWinner
			}
			seen[w] = struct{}{}
		}

		var cfg models.EngineConfig
		if err := tx.First(&cfg, "id = ?", configRowID).Error; err != nil {
			return internalf("load engine config: %v", err)
		}

		payouts, fee, err := ComputePayouts(b.Reward.BigInt(), b.Distribution, winners)
		if err != nil {
			return err
		}

		// Execute transfers before the Completed write: if the custody call
		// fails nothing below runs and the transaction rolls back.
		requests := make([]TransferRequest, 0, len(payouts)+1)
		for _, p := range payouts {
			requests = append(requests, TransferRequest{
				Token:    b.Token,
				From:     escrowSource(b.ID),
				To:       p.Winner,
				Amount:   p.Amount,
				Kind:     models.TransferWinnerPayout,
				Position: p.Position,
			})
		}
		if fee.Sign() > 0 {
			requests = append(requests, TransferRequest{
				Token:  b.Token,
				From:   escrowSource(b.ID),
				To:     cfg.FeeAccount,
				Amount: fee,
				Kind:   models.TransferProtocolFee,
			})
		}
		results, err := e.transfer.Execute(ctx, b.ID, requests)
		if err != nil {
			log.Printf("❌ [SETTLE] transfer batch failed for bounty #%d: %v", b.ID, err)
			return fmt.Errorf("settlement transfers: %w", err)
		}

		for i, req := range requests {
			record := models.TransferRecord{
				ID:        uuid.NewString(),
				BountyID:  b.ID,
				Kind:      req.Kind,
				Token:     req.Token,
				Recipient: req.To,
				Amount:    models.Amount{Int: *new(big.Int).Set(req.Amount)},
				Position:  req.Position,
			}
			if i < len(results) {
				record.TxRef = results[i].TxRef
			}
			if err := tx.Create(&record).Error; err != nil {
				return internalf("record transfer: %v", err)
			}
		}

		// Rank the winning submissions; winners the owner picked from
		// outside the applicant pool are allowed but worth flagging.
		for _, p := range payouts {
			res := tx.Model(&models.Submission{}).
				Where("bounty_id = ? AND applicant = ?", b.ID, p.Winner).
				Update("ranking", p.Position)
			if res.Error != nil {
				return internalf("rank submission: %v", res.Error)
			}
			if res.RowsAffected == 0 {
				log.Printf("⚠️  [SETTLE] winner %s never applied to bounty #%d (sponsor discretion)", p.Winner, b.ID)
			}
		}

		completedAt := now
		b.Winners = models.StringList(winners)
		b.Status = models.StatusCompleted
		b.CompletedAt = &completedAt
		if err := tx.Save(b).Error; err != nil {
			return internalf("save bounty %d: %v", bountyID, err)
		}

		result = &SettlementResult{Bounty: b, Payouts: payouts, Fee: fee}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🏆 [SETTLE] bounty #%d completed, %d winner(s) paid, fee %s", bountyID, len(result.Payouts), result.Fee.String())
	return result, nil
}
