package dynamics

import "github.com/shopspring/decimal"

// blockSeconds is the billing granularity: durations round up to full
// 15-minute blocks.
const blockSeconds = 900

var (
	decimalBlock   = decimal.NewFromInt(blockSeconds)
	decimalMinutes = decimal.NewFromInt(15)
)

// RoundUpToBlocks rounds seconds up to the next multiple of 900. Zero and
// negative inputs yield zero.
func RoundUpToBlocks(seconds int64) int64 {
	if seconds <= 0 {
		return 0
	}
	blocks := (seconds + blockSeconds - 1) / blockSeconds
	return blocks * blockSeconds
}

// BillableMinutes converts raw elapsed seconds into billable whole minutes:
// the multiplier is applied first, the scaled duration is rounded up to full
// 15-minute blocks, and the result is expressed in minutes. This runs once
// per finalized record, never on intermediate values, so merged intervals do
// not compound the rounding.
func BillableMinutes(rawSeconds int64, multiplier decimal.Decimal) int64 {
	scaled := multiplier.Mul(decimal.NewFromInt(rawSeconds))
	if scaled.Sign() <= 0 {
		return 0
	}
	blocks, remainder := scaled.QuoRem(decimalBlock, 0)
	if remainder.Sign() > 0 {
		blocks = blocks.Add(decimal.NewFromInt(1))
	}
	return blocks.Mul(decimalMinutes).IntPart()
}

// SlackSeconds is the rounding headroom of an interval at multiplier 1: the
// gap between the raw duration and its 15-minute ceiling. Absorption may
// hand this headroom to absorbable records on the same day.
func SlackSeconds(rawSeconds int64) int64 {
	return RoundUpToBlocks(rawSeconds) - max(rawSeconds, 0)
}
