package engine

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bounty-marketplace-system/models"
)

// fakeTransferer records every settlement batch and hands back synthetic
// tx refs. Setting failErr makes the next Execute fail, which must roll the
// whole settlement back.
type fakeTransferer struct {
	batches [][]TransferRequest
	failErr error
}

func (f *fakeTransferer) Execute(ctx context.Context, bountyID uint32, transfers []TransferRequest) ([]TransferResult, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.batches = append(f.batches, transfers)
	results := make([]TransferResult, len(transfers))
	for i := range transfers {
		results[i] = TransferResult{TxRef: "tx-fake"}
	}
	return results, nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func setupEngine(t *testing.T) (*Engine, *fakeTransferer, *testClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Bounty{},
		&models.Submission{},
		&models.TransferRecord{},
		&models.EngineConfig{},
	))

	transfer := &fakeTransferer{}
	eng := New(db, transfer)

	clock := &testClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	eng.SetNowFunc(func() time.Time { return clock.now })

	require.NoError(t, eng.EnsureConfig("admin", "treasury"))
	return eng, transfer, clock
}

func createTestBounty(t *testing.T, eng *Engine, clock *testClock, reward int64, dist []models.DistributionShare) *models.Bounty {
	t.Helper()
	b, err := eng.CreateBounty(context.Background(), CreateParams{
		Owner:              "sponsor",
		Token:              "USDC",
		Reward:             big.NewInt(reward),
		Distribution:       dist,
		SubmissionDeadline: clock.now.Add(24 * time.Hour),
		JudgingDeadline:    clock.now.Add(48 * time.Hour),
		Title:              "Build the Thing",
		Description:        "do it well",
		Category:           models.CategoryDevelopment,
		Skills:             []string{"go", "sql"},
		SponsorName:        "Acme",
	})
	require.NoError(t, err)
	return b
}

func winnerTakesAll() []models.DistributionShare {
	return []models.DistributionShare{{Position: 1, Percentage: 100}}
}

func TestCreateBountyValidation(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()

	base := CreateParams{
		Owner:              "sponsor",
		Token:              "USDC",
		Reward:             big.NewInt(1000),
		Distribution:       winnerTakesAll(),
		SubmissionDeadline: clock.now.Add(24 * time.Hour),
		JudgingDeadline:    clock.now.Add(48 * time.Hour),
		Title:              "Test",
	}

	p := base
	p.Reward = big.NewInt(0)
	_, err := eng.CreateBounty(ctx, p)
	assert.ErrorIs(t, err, ErrInvalidReward)

	p = base
	p.Distribution = []models.DistributionShare{{Position: 1, Percentage: 99}}
	_, err = eng.CreateBounty(ctx, p)
	assert.ErrorIs(t, err, ErrDistributionMustSumTo100)

	p = base
	p.SubmissionDeadline = clock.now.Add(-time.Hour)
	_, err = eng.CreateBounty(ctx, p)
	assert.ErrorIs(t, err, ErrBountyDeadlinePassed)

	p = base
	p.JudgingDeadline = base.SubmissionDeadline.Add(-time.Minute)
	_, err = eng.CreateBounty(ctx, p)
	assert.ErrorIs(t, err, ErrJudgingDeadlineMustBeAfterSubmissionDeadline)

	b, err := eng.CreateBounty(ctx, base)
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusActive, b.Status)
	assert.Equal(t, "test", b.Slug)
	assert.Empty(t, b.Winners)
}

func TestBountyIDsMonotonic(t *testing.T) {
	eng, _, clock := setupEngine(t)
	first := createTestBounty(t, eng, clock, 100, winnerTakesAll())
	second := createTestBounty(t, eng, clock, 100, winnerTakesAll())
	assert.Greater(t, second.ID, first.ID)
}

func TestApplyToBounty(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	sub, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://github.com/bob/work")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Nil(t, sub.Ranking)

	// one submission per applicant
	_, err = eng.ApplyToBounty(ctx, "bob", b.ID, "https://github.com/bob/other")
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	// owners never compete on their own bounty
	_, err = eng.ApplyToBounty(ctx, "sponsor", b.ID, "https://example.com")
	assert.ErrorIs(t, err, ErrOwnerCannotApply)

	_, err = eng.ApplyToBounty(ctx, "carol", 9999, "https://example.com")
	assert.ErrorIs(t, err, ErrBountyNotFound)

	// window closes at the submission deadline
	clock.advance(25 * time.Hour)
	_, err = eng.ApplyToBounty(ctx, "dave", b.ID, "https://example.com")
	assert.ErrorIs(t, err, ErrBountyDeadlinePassed)

	applicants, err := eng.GetBountyApplicants(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, applicants)
}

func TestUpdateSubmission(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	_, err := eng.UpdateSubmission(ctx, "bob", b.ID, "https://new.link")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	orig, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://old.link")
	require.NoError(t, err)

	updated, err := eng.UpdateSubmission(ctx, "bob", b.ID, "https://new.link")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, "https://new.link", updated.Link)

	clock.advance(25 * time.Hour)
	_, err = eng.UpdateSubmission(ctx, "bob", b.ID, "https://too.late")
	assert.ErrorIs(t, err, ErrBountyDeadlinePassed)
}

func TestUpdateBountyEditLock(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	title := "Renamed"
	_, err := eng.UpdateBounty(ctx, "mallory", b.ID, UpdateParams{NewTitle: &title})
	assert.ErrorIs(t, err, ErrOnlyOwner)

	updated, err := eng.UpdateBounty(ctx, "sponsor", b.ID, UpdateParams{NewTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "renamed", updated.Slug)

	// first submission freezes the terms
	_, err = eng.ApplyToBounty(ctx, "bob", b.ID, "https://link")
	require.NoError(t, err)
	_, err = eng.UpdateBounty(ctx, "sponsor", b.ID, UpdateParams{NewTitle: &title})
	assert.ErrorIs(t, err, ErrBountyHasSubmissions)
}

func TestUpdateBountyDeadlineRules(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	// deadlines only ever move later
	earlier := b.SubmissionDeadline.Add(-time.Hour)
	_, err := eng.UpdateBounty(ctx, "sponsor", b.ID, UpdateParams{NewSubmissionDeadline: &earlier})
	assert.ErrorIs(t, err, ErrInvalidDeadlineUpdate)

	// a later deadline must still leave room for judging
	past := b.JudgingDeadline.Add(time.Hour)
	_, err = eng.UpdateBounty(ctx, "sponsor", b.ID, UpdateParams{NewSubmissionDeadline: &past})
	assert.ErrorIs(t, err, ErrJudgingDeadlineMustBeAfterSubmissionDeadline)

	later := b.SubmissionDeadline.Add(time.Hour)
	updated, err := eng.UpdateBounty(ctx, "sponsor", b.ID, UpdateParams{NewSubmissionDeadline: &later})
	require.NoError(t, err)
	assert.True(t, updated.SubmissionDeadline.Equal(later))
}

func TestDeleteBounty(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()

	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())
	assert.ErrorIs(t, eng.DeleteBounty(ctx, "mallory", b.ID), ErrOnlyOwner)
	require.NoError(t, eng.DeleteBounty(ctx, "sponsor", b.ID))
	_, err := eng.GetBounty(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBountyNotFound)

	b = createTestBounty(t, eng, clock, 1000, winnerTakesAll())
	_, err = eng.ApplyToBounty(ctx, "bob", b.ID, "https://link")
	require.NoError(t, err)
	assert.ErrorIs(t, eng.DeleteBounty(ctx, "sponsor", b.ID), ErrBountyHasSubmissions)
}

func TestSelectWinnersSettles(t *testing.T) {
	eng, transfer, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, []models.DistributionShare{
		{Position: 1, Percentage: 70},
		{Position: 2, Percentage: 30},
	})

	_, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://bob")
	require.NoError(t, err)
	_, err = eng.ApplyToBounty(ctx, "carol", b.ID, "https://carol")
	require.NoError(t, err)

	_, err = eng.SelectWinners(ctx, "mallory", b.ID, []string{"bob"})
	assert.ErrorIs(t, err, ErrOnlyOwner)

	result, err := eng.SelectWinners(ctx, "sponsor", b.ID, []string{"carol", "bob"})
	require.NoError(t, err)

	require.Len(t, result.Payouts, 2)
	assert.Equal(t, "carol", result.Payouts[0].Winner)
	assert.Equal(t, int64(665), result.Payouts[0].Amount.Int64())
	assert.Equal(t, "bob", result.Payouts[1].Winner)
	assert.Equal(t, int64(285), result.Payouts[1].Amount.Int64())
	assert.Equal(t, int64(50), result.Fee.Int64())

	assert.Equal(t, models.StatusCompleted, result.Bounty.Status)
	assert.Equal(t, models.StringList{"carol", "bob"}, result.Bounty.Winners)
	require.NotNil(t, result.Bounty.CompletedAt)

	// one batch: two payouts + the fee, all drawn from the bounty's escrow
	require.Len(t, transfer.batches, 1)
	batch := transfer.batches[0]
	require.Len(t, batch, 3)
	for _, req := range batch {
		assert.Equal(t, escrowSource(b.ID), req.From)
		assert.Equal(t, "USDC", req.Token)
	}
	assert.Equal(t, "treasury", batch[2].To)
	assert.Equal(t, models.TransferProtocolFee, batch[2].Kind)

	// audit trail persisted
	records, err := eng.GetBountyPayouts(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// winning submissions got their rank
	subs, err := eng.GetBountySubmissions(ctx, b.ID)
	require.NoError(t, err)
	ranks := map[string]*int{}
	for _, s := range subs {
		ranks[s.Applicant] = s.Ranking
	}
	require.NotNil(t, ranks["carol"])
	assert.Equal(t, 1, *ranks["carol"])
	require.NotNil(t, ranks["bob"])
	assert.Equal(t, 2, *ranks["bob"])

	// settlement is terminal
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob"})
	assert.ErrorIs(t, err, ErrInactiveBounty)
	_, err = eng.ApplyToBounty(ctx, "dave", b.ID, "https://late")
	assert.ErrorIs(t, err, ErrInactiveBounty)
}

func TestSelectWinnersFromInReview(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 100, winnerTakesAll())

	_, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://bob")
	require.NoError(t, err)

	clock.advance(25 * time.Hour)
	moved, changed, err := eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusInReview, moved.Status)

	result, err := eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(95), result.Payouts[0].Amount.Int64())
	assert.Equal(t, int64(5), result.Fee.Int64())
}

func TestSelectWinnersGuards(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, []models.DistributionShare{
		{Position: 1, Percentage: 70},
		{Position: 2, Percentage: 30},
	})

	_, err := eng.SelectWinners(ctx, "sponsor", b.ID, nil)
	assert.ErrorIs(t, err, ErrNotEnoughWinners)

	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrTooManyWinners)

	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob", "bob"})
	assert.ErrorIs(t, err, ErrDuplicateWinner)

	// a blank identity is its own failure, not a duplicate
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob", " "})
	assert.ErrorIs(t, err, ErrInvalidWinner)
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{""})
	assert.ErrorIs(t, err, ErrInvalidWinner)

	clock.advance(49 * time.Hour)
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob"})
	assert.ErrorIs(t, err, ErrJudgingDeadlinePassed)
}

func TestSelectWinnersTransferFailureRollsBack(t *testing.T) {
	eng, transfer, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())
	_, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://bob")
	require.NoError(t, err)

	transfer.failErr = errors.New("custody unavailable")
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob"})
	require.Error(t, err)

	// nothing moved: still settleable once custody recovers
	reloaded, err := eng.GetBounty(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, reloaded.Status)
	assert.Empty(t, reloaded.Winners)

	records, err := eng.GetBountyPayouts(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	transfer.failErr = nil
	_, err = eng.SelectWinners(ctx, "sponsor", b.ID, []string{"bob"})
	assert.NoError(t, err)
}

func TestCheckJudgingIsIdempotent(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	// nothing to do while the window is open
	_, changed, err := eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	clock.advance(25 * time.Hour)
	moved, changed, err := eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusInReview, moved.Status)

	_, changed, err = eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	// judging abandoned: force-complete with no winners, no transfers
	clock.advance(24 * time.Hour)
	done, changed, err := eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Empty(t, done.Winners)
	require.NotNil(t, done.CompletedAt)

	records, err := eng.GetBountyPayouts(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, changed, err = eng.CheckJudging(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestGetBountyFillsCounts(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()
	b := createTestBounty(t, eng, clock, 1000, winnerTakesAll())

	_, err := eng.ApplyToBounty(ctx, "bob", b.ID, "https://bob")
	require.NoError(t, err)
	_, err = eng.ApplyToBounty(ctx, "carol", b.ID, "https://carol")
	require.NoError(t, err)

	got, err := eng.GetBounty(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SubmissionCount)
	assert.ElementsMatch(t, []string{"bob", "carol"}, got.Applicants)

	status, err := eng.GetBountyStatus(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)
}

func TestAdminConfig(t *testing.T) {
	eng, _, _ := setupEngine(t)
	ctx := context.Background()

	cfg, err := eng.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.Admin)
	assert.Equal(t, "treasury", cfg.FeeAccount)

	// re-seeding never overwrites the live row
	require.NoError(t, eng.EnsureConfig("someone-else", "elsewhere"))
	cfg, err = eng.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.Admin)

	_, err = eng.UpdateAdmin(ctx, "mallory", "mallory")
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = eng.UpdateAdmin(ctx, "admin", "")
	assert.ErrorIs(t, err, ErrAdminCannotBeZero)

	previous, err := eng.UpdateAdmin(ctx, "admin", "admin2")
	require.NoError(t, err)
	assert.Equal(t, "admin", previous)

	// old admin lost the keys
	_, err = eng.UpdateFeeAccount(ctx, "admin", "new-treasury")
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, err = eng.UpdateFeeAccount(ctx, "admin2", "treasury")
	assert.ErrorIs(t, err, ErrSameFeeAccount)
	_, err = eng.UpdateFeeAccount(ctx, "admin2", "")
	assert.ErrorIs(t, err, ErrFeeAccountCannotBeZero)

	previous, err = eng.UpdateFeeAccount(ctx, "admin2", "new-treasury")
	require.NoError(t, err)
	assert.Equal(t, "treasury", previous)
}
