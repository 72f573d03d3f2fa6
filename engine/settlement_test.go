package engine

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounty-marketplace-system/models"
)

func TestComputePayoutsTwoWinners(t *testing.T) {
	// reward 1000, 5% fee, 70/30 split:
	// fee 50, net 950, payouts 665 and 285, no dust.
	dist := models.DistributionList{
		{Position: 1, Percentage: 70},
		{Position: 2, Percentage: 30},
	}
	payouts, fee, err := ComputePayouts(big.NewInt(1000), dist, []string{"alice", "bob"})
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	assert.Equal(t, "alice", payouts[0].Winner)
	assert.Equal(t, 1, payouts[0].Position)
	assert.Equal(t, int64(665), payouts[0].Amount.Int64())

	assert.Equal(t, "bob", payouts[1].Winner)
	assert.Equal(t, 2, payouts[1].Position)
	assert.Equal(t, int64(285), payouts[1].Amount.Int64())

	assert.Equal(t, int64(50), fee.Int64())
}

func TestComputePayoutsWinnerTakesAll(t *testing.T) {
	dist := models.DistributionList{{Position: 1, Percentage: 100}}
	payouts, fee, err := ComputePayouts(big.NewInt(100), dist, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(95), payouts[0].Amount.Int64())
	assert.Equal(t, int64(5), fee.Int64())
}

func TestComputePayoutsDustGoesToFee(t *testing.T) {
	// reward 101: fee floor(101*500/10000)=5, net 96.
	// 70% of 96 = 67 (floor), 30% of 96 = 28 (floor); dust 1 joins the fee.
	dist := models.DistributionList{
		{Position: 1, Percentage: 70},
		{Position: 2, Percentage: 30},
	}
	payouts, fee, err := ComputePayouts(big.NewInt(101), dist, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(67), payouts[0].Amount.Int64())
	assert.Equal(t, int64(28), payouts[1].Amount.Int64())
	assert.Equal(t, int64(6), fee.Int64())
}

func TestComputePayoutsUnclaimedSlotsGoToFee(t *testing.T) {
	// Three slots defined but only one winner selected: the unclaimed 50%
	// of the net stays with the fee transfer rather than being stranded.
	dist := models.DistributionList{
		{Position: 1, Percentage: 50},
		{Position: 2, Percentage: 30},
		{Position: 3, Percentage: 20},
	}
	payouts, fee, err := ComputePayouts(big.NewInt(1000), dist, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(475), payouts[0].Amount.Int64()) // 50% of 950

	total := new(big.Int).Set(fee)
	for _, p := range payouts {
		total.Add(total, p.Amount)
	}
	assert.Equal(t, int64(1000), total.Int64())
}

func TestComputePayoutsGuards(t *testing.T) {
	dist := models.DistributionList{{Position: 1, Percentage: 100}}

	_, _, err := ComputePayouts(big.NewInt(0), dist, []string{"alice"})
	assert.ErrorIs(t, err, ErrInvalidReward)

	_, _, err = ComputePayouts(nil, dist, []string{"alice"})
	assert.ErrorIs(t, err, ErrInvalidReward)

	_, _, err = ComputePayouts(big.NewInt(100), dist, nil)
	assert.ErrorIs(t, err, ErrNotEnoughWinners)

	_, _, err = ComputePayouts(big.NewInt(100), dist, []string{"alice", "bob"})
	assert.ErrorIs(t, err, ErrTooManyWinners)
}

// Conservation: for any reward and valid split, fee plus payouts equals the
// reward exactly and no individual payout is negative.
func TestComputePayoutsConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	winners := []string{"w1", "w2", "w3", "w4"}

	for i := 0; i < 500; i++ {
		reward := big.NewInt(1 + rng.Int63n(1_000_000_000_000))

		n := 1 + rng.Intn(4)
		pcts := make([]uint32, n)
		remaining := uint32(100)
		for j := 0; j < n-1; j++ {
			max := remaining - uint32(n-1-j)
			pct := uint32(1 + rng.Intn(int(max)))
			pcts[j] = pct
			remaining -= pct
		}
		pcts[n-1] = remaining

		dist := make(models.DistributionList, n)
		for j, pct := range pcts {
			dist[j] = models.DistributionShare{Position: uint32(j + 1), Percentage: pct}
		}
		_, err := ValidateDistribution(dist)
		require.NoError(t, err)

		payouts, fee, err := ComputePayouts(reward, dist, winners[:n])
		require.NoError(t, err)

		total := new(big.Int).Set(fee)
		for _, p := range payouts {
			assert.True(t, p.Amount.Sign() >= 0)
			total.Add(total, p.Amount)
		}
		assert.Zero(t, total.Cmp(reward), "reward=%s dist=%v total=%s", reward, pcts, total)
	}
}

// Huge rewards beyond int64 must settle without overflow.
func TestComputePayoutsLargeReward(t *testing.T) {
	reward, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10) // i128 max
	require.True(t, ok)

	dist := models.DistributionList{
		{Position: 1, Percentage: 70},
		{Position: 2, Percentage: 30},
	}
	payouts, fee, err := ComputePayouts(reward, dist, []string{"alice", "bob"})
	require.NoError(t, err)

	total := new(big.Int).Set(fee)
	for _, p := range payouts {
		total.Add(total, p.Amount)
	}
	assert.Zero(t, total.Cmp(reward))
}
