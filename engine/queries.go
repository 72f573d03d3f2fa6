package engine

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bounty-marketplace-system/models"
)

// Read-only queries. These never take locks; the ledger row is the single
// source of truth and a stale read here is at worst one transition behind.

// GetBounty loads one bounty with its derived applicant list and
// submission count filled in.
func (e *Engine) GetBounty(ctx context.Context, bountyID uint32) (*models.Bounty, error) {
	var b models.Bounty
	if err := e.db.WithContext(ctx).First(&b, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBountyNotFound
		}
		return nil, internalf("load bounty %d: %v", bountyID, err)
	}
	applicants, err := e.GetBountyApplicants(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	b.Applicants = applicants
	b.SubmissionCount = int64(len(applicants))
	return &b, nil
}

// GetBountyStatus returns just the lifecycle status.
func (e *Engine) GetBountyStatus(ctx context.Context, bountyID uint32) (models.BountyStatus, error) {
	var b models.Bounty
	if err := e.db.WithContext(ctx).Select("status").First(&b, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBountyNotFound
		}
		return "", internalf("load bounty %d: %v", bountyID, err)
	}
	return b.Status, nil
}

// GetBountySubmissions returns the applicant → link registry for one bounty.
func (e *Engine) GetBountySubmissions(ctx context.Context, bountyID uint32) ([]models.Submission, error) {
	if err := e.requireBounty(ctx, bountyID); err != nil {
		return nil, err
	}
	var subs []models.Submission
	if err := e.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		Order("created_at ASC").
		Find(&subs).Error; err != nil {
		return nil, internalf("load submissions for bounty %d: %v", bountyID, err)
	}
	return subs, nil
}

// GetBountyApplicants returns the identities that applied, oldest first.
func (e *Engine) GetBountyApplicants(ctx context.Context, bountyID uint32) ([]string, error) {
	if err := e.requireBounty(ctx, bountyID); err != nil {
		return nil, err
	}
	var applicants []string
	if err := e.db.WithContext(ctx).Model(&models.Submission{}).
		Where("bounty_id = ?", bountyID).
		Order("created_at ASC").
		Pluck("applicant", &applicants).Error; err != nil {
		return nil, internalf("load applicants for bounty %d: %v", bountyID, err)
	}
	return applicants, nil
}

// GetBountyWinners returns the ranked winner list (empty until Completed).
func (e *Engine) GetBountyWinners(ctx context.Context, bountyID uint32) ([]string, error) {
	var b models.Bounty
	if err := e.db.WithContext(ctx).Select("winners").First(&b, "id = ?", bountyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBountyNotFound
		}
		return nil, internalf("load bounty %d: %v", bountyID, err)
	}
	return b.Winners, nil
}

// GetBountyPayouts returns the settlement audit trail for one bounty.
func (e *Engine) GetBountyPayouts(ctx context.Context, bountyID uint32) ([]models.TransferRecord, error) {
	if err := e.requireBounty(ctx, bountyID); err != nil {
		return nil, err
	}
	var records []models.TransferRecord
	if err := e.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, internalf("load payouts for bounty %d: %v", bountyID, err)
	}
	return records, nil
}

func (e *Engine) requireBounty(ctx context.Context, bountyID uint32) error {
	var n int64
	if err := e.db.WithContext(ctx).Model(&models.Bounty{}).Where("id = ?", bountyID).Count(&n).Error; err != nil {
		return internalf("check bounty %d: %v", bountyID, err)
	}
	if n == 0 {
		return ErrBountyNotFound
	}
	return nil
}

// DB exposes the handle for read-side listing queries in the services
// layer; mutations stay inside the engine.
func (e *Engine) DB() *gorm.DB { return e.db }
