package engine

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bounty-marketplace-system/models"
)

// Engine is the single authoritative implementation of the bounty lifecycle:
// every status transition, authorization rule, and settlement runs through
// it. Services and workers call it; nothing else writes bounty state.
//
// Every mutating operation runs as one DB transaction that first takes a row
// lock on the bounty, so calls on the same bounty id serialize and either
// fully apply or leave the record untouched.
type Engine struct {
	db       *gorm.DB
	transfer Transferer
	nowFn    func() time.Time
}

func New(db *gorm.DB, transfer Transferer) *Engine {
	return &Engine{
		db:       db,
		transfer: transfer,
		nowFn:    time.Now,
	}
}

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = time.Now
		return
	}
	e.nowFn = now
}

func (e *Engine) now() time.Time {
	return e.nowFn()
}

// locked adds SELECT ... FOR UPDATE on dialects that support it. The sqlite
// test driver serializes writers on its own.
func locked(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func lockBounty(tx *gorm.DB, id uint32) (*models.Bounty, error) {
	var b models.Bounty
	if err := locked(tx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBountyNotFound
		}
		return nil, internalf("load bounty %d: %v", id, err)
	}
	return &b, nil
}

func countSubmissions(tx *gorm.DB, bountyID uint32) (int64, error) {
	var n int64
	if err := tx.Model(&models.Submission{}).Where("bounty_id = ?", bountyID).Count(&n).Error; err != nil {
		return 0, internalf("count submissions for bounty %d: %v", bountyID, err)
	}
	return n, nil
}

func isZeroIdentity(addr string) bool {
	return strings.TrimSpace(addr) == ""
}

// --- Engine config (admin + fee account) ---

const configRowID = 1

// EnsureConfig seeds the admin/fee-account row on first boot. Existing
// values are never overwritten; changes go through UpdateAdmin /
// UpdateFeeAccount only.
func (e *Engine) EnsureConfig(admin, feeAccount string) error {
	if isZeroIdentity(admin) {
		return ErrAdminCannotBeZero
	}
	if isZeroIdentity(feeAccount) {
		return ErrFeeAccountCannotBeZero
	}
	cfg := models.EngineConfig{ID: configRowID, Admin: admin, FeeAccount: feeAccount}
	if err := e.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cfg).Error; err != nil {
		return internalf("seed engine config: %v", err)
	}
	return nil
}

// Config returns the current admin/fee-account pair.
func (e *Engine) Config(ctx context.Context) (*models.EngineConfig, error) {
	var cfg models.EngineConfig
	if err := e.db.WithContext(ctx).First(&cfg, "id = ?", configRowID).Error; err != nil {
		return nil, internalf("load engine config: %v", err)
	}
	return &cfg, nil
}

// UpdateAdmin reassigns the admin identity. Admin-only; the new admin must
// be a real identity. Returns the previous admin.
func (e *Engine) UpdateAdmin(ctx context.Context, caller, newAdmin string) (string, error) {
	if isZeroIdentity(newAdmin) {
		return "", ErrAdminCannotBeZero
	}
	var previous string
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.EngineConfig
		if err := locked(tx).First(&cfg, "id = ?", configRowID).Error; err != nil {
			return internalf("load engine config: %v", err)
		}
		if caller != cfg.Admin {
			return ErrNotAdmin
		}
		previous = cfg.Admin
		cfg.Admin = newAdmin
		if err := tx.Save(&cfg).Error; err != nil {
			return internalf("save engine config: %v", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("[ADMIN] admin reassigned %s → %s", previous, newAdmin)
	return previous, nil
}

// UpdateFeeAccount reassigns the protocol fee account. Admin-only; the new
// account must be non-zero and differ from the current one. Returns the
// previous fee account.
func (e *Engine) UpdateFeeAccount(ctx context.Context, caller, newFeeAccount string) (string, error) {
	if isZeroIdentity(newFeeAccount) {
		return "", ErrFeeAccountCannotBeZero
	}
	var previous string
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.EngineConfig
		if err := locked(tx).First(&cfg, "id = ?", configRowID).Error; err != nil {
			return internalf("load engine config: %v", err)
		}
		if caller != cfg.Admin {
			return ErrNotAdmin
		}
		if newFeeAccount == cfg.FeeAccount {
			return ErrSameFeeAccount
		}
		previous = cfg.FeeAccount
		cfg.FeeAccount = newFeeAccount
		if err := tx.Save(&cfg).Error; err != nil {
			return internalf("save engine config: %v", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("[ADMIN] fee account reassigned %s → %s", previous, newFeeAccount)
	return previous, nil
}
