package engine

import (
	"math/big"

	"bounty-marketplace-system/models"
)

// Protocol fee in basis points (10000 bps == 100%). Fixed 5% of the reward,
// taken before the winner split.
const (
	FeeBps  int64 = 500
	bpsBase int64 = 10_000
)

// Payout is one winner's computed share.
type Payout struct {
	Winner   string
	Position int // 1-based rank
	Amount   *big.Int
}

// ComputePayouts derives the settlement amounts for a validated bounty:
//
//	fee      = floor(reward * FeeBps / 10000)
//	net      = reward - fee
//	payout_i = floor(net * distribution[i].percentage / 100)
//
// All flooring dust (net - Σ payouts) is added to the fee transfer, so the
// total moved is always exactly the reward and nothing is stranded. The fee
// returned here already includes that remainder.
func ComputePayouts(reward *big.Int, dist models.DistributionList, winners []string) ([]Payout, *big.Int, error) {
	if reward == nil || reward.Sign() <= 0 {
		return nil, nil, ErrInvalidReward
	}
	if len(winners) == 0 {
		return nil, nil, ErrNotEnoughWinners
	}
	if len(winners) > len(dist) {
		return nil, nil, ErrTooManyWinners
	}

	fee := new(big.Int).Mul(reward, big.NewInt(FeeBps))
	fee.Div(fee, big.NewInt(bpsBase))
	net := new(big.Int).Sub(reward, fee)

	payouts := make([]Payout, 0, len(winners))
	distributed := big.NewInt(0)
	for i, winner := range winners {
		amount := new(big.Int).Mul(net, big.NewInt(int64(dist[i].Percentage)))
		amount.Div(amount, big.NewInt(100))
		payouts = append(payouts, Payout{
			Winner:   winner,
			Position: i + 1,
			Amount:   amount,
		})
		distributed.Add(distributed, amount)
	}

	// Remainder policy: dust joins the fee transfer.
	remainder := new(big.Int).Sub(net, distributed)
	if remainder.Sign() < 0 {
		// distribution over 100% should be unreachable past validation
		return nil, nil, internalf("payouts %s exceed net %s", distributed, net)
	}
	fee.Add(fee, remainder)

	return payouts, fee, nil
}
