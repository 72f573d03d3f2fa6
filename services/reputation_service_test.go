package services

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/models"
)

func setupReputation(t *testing.T) *ReputationService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TalentReputation{},
		&models.BadgeType{},
		&models.UserBadge{},
	))
	svc := NewReputationService(db)
	require.NoError(t, svc.SeedBadgeTypes())
	return svc
}

func TestSeedBadgeTypesIsIdempotent(t *testing.T) {
	svc := setupReputation(t)
	require.NoError(t, svc.SeedBadgeTypes())

	var count int64
	require.NoError(t, svc.DB.Model(&models.BadgeType{}).Count(&count).Error)
	assert.Equal(t, int64(len(models.BadgeTriggers)), count)
}

func badgeCodes(t *testing.T, svc *ReputationService, wallet string) []string {
	t.Helper()
	var awards []models.UserBadge
	require.NoError(t, svc.DB.Where("wallet_address = ?", wallet).Find(&awards).Error)
	codes := make([]string, 0, len(awards))
	for _, a := range awards {
		var bt models.BadgeType
		require.NoError(t, svc.DB.First(&bt, "id = ?", a.BadgeTypeID).Error)
		codes = append(codes, bt.Code)
	}
	return codes
}

func TestRecordApplication(t *testing.T) {
	svc := setupReputation(t)

	svc.RecordApplication("bob")
	svc.RecordApplication("bob")

	var rep models.TalentReputation
	require.NoError(t, svc.DB.First(&rep, "wallet_address = ?", "bob").Error)
	assert.Equal(t, int64(2), rep.TotalApplications)
	assert.Equal(t, models.VerificationUnverified, rep.VerificationLevel)

	// the first-apply badge fires once and only once
	assert.ElementsMatch(t, []string{"FIRST_APPLY"}, badgeCodes(t, svc, "bob"))
}

func settlementFor(bountyID uint32, payouts ...engine.Payout) *engine.SettlementResult {
	return &engine.SettlementResult{
		Bounty:  &models.Bounty{ID: bountyID},
		Payouts: payouts,
		Fee:     big.NewInt(0),
	}
}

func TestRecordSettlement(t *testing.T) {
	svc := setupReputation(t)

	svc.RecordSettlement(settlementFor(1,
		engine.Payout{Winner: "bob", Position: 1, Amount: big.NewInt(665)},
		engine.Payout{Winner: "carol", Position: 2, Amount: big.NewInt(285)},
	))

	var bob models.TalentReputation
	require.NoError(t, svc.DB.First(&bob, "wallet_address = ?", "bob").Error)
	assert.Equal(t, int64(1), bob.BountiesWon)
	assert.Equal(t, int64(1), bob.FirstPlaceWins)
	assert.Equal(t, "665", bob.TotalEarned.String())
	assert.Equal(t, models.VerificationBasic, bob.VerificationLevel)
	require.NotNil(t, bob.LastWonAt)
	assert.ElementsMatch(t, []string{"FIRST_WIN", "CHAMPION"}, badgeCodes(t, svc, "bob"))

	var carol models.TalentReputation
	require.NoError(t, svc.DB.First(&carol, "wallet_address = ?", "carol").Error)
	assert.Equal(t, int64(1), carol.BountiesWon)
	assert.Equal(t, int64(0), carol.FirstPlaceWins)
	assert.Equal(t, "285", carol.TotalEarned.String())
	assert.ElementsMatch(t, []string{"FIRST_WIN"}, badgeCodes(t, svc, "carol"))

	// earnings accumulate across settlements
	svc.RecordSettlement(settlementFor(2,
		engine.Payout{Winner: "bob", Position: 1, Amount: big.NewInt(100)},
	))
	require.NoError(t, svc.DB.First(&bob, "wallet_address = ?", "bob").Error)
	assert.Equal(t, int64(2), bob.BountiesWon)
	assert.Equal(t, "765", bob.TotalEarned.String())
}

func TestVerificationProgression(t *testing.T) {
	svc := setupReputation(t)

	for i := uint32(1); i <= 10; i++ {
		svc.RecordSettlement(settlementFor(i,
			engine.Payout{Winner: "bob", Position: 1, Amount: big.NewInt(10)},
		))
	}

	var rep models.TalentReputation
	require.NoError(t, svc.DB.First(&rep, "wallet_address = ?", "bob").Error)
	assert.Equal(t, int64(10), rep.BountiesWon)
	assert.Equal(t, models.VerificationExpert, rep.VerificationLevel)

	// 10 wins / 5 first places unlock the late-game badges
	assert.Contains(t, badgeCodes(t, svc, "bob"), "VETERAN")
	assert.Contains(t, badgeCodes(t, svc, "bob"), "SERIAL_CHAMP")
}

func TestMeetsThreshold(t *testing.T) {
	rep := &models.TalentReputation{TotalApplications: 3, BountiesWon: 2, FirstPlaceWins: 0}

	assert.True(t, meetsThreshold(rep, map[string]int64{"bounties_won": 1}))
	assert.True(t, meetsThreshold(rep, map[string]int64{"bounties_won": 2, "total_applications": 3}))
	assert.False(t, meetsThreshold(rep, map[string]int64{"first_place_wins": 1}))
	assert.False(t, meetsThreshold(rep, map[string]int64{"bounties_won": 5}))
	assert.False(t, meetsThreshold(rep, nil))
	assert.False(t, meetsThreshold(rep, map[string]int64{"unknown_metric": 1}))
}

func TestComputeSuccessRate(t *testing.T) {
	rep := models.TalentReputation{TotalApplications: 4, BountiesWon: 1}
	rep.ComputeSuccessRate()
	assert.InDelta(t, 0.25, rep.SuccessRate, 1e-9)

	fresh := models.TalentReputation{}
	fresh.ComputeSuccessRate()
	assert.Zero(t, fresh.SuccessRate)
}
