package dynamics

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestBillableMinutes(t *testing.T) {
	one := decimal.NewFromInt(1)

	tests := []struct {
		name       string
		rawSeconds int64
		multiplier decimal.Decimal
		want       int64
	}{
		{name: "zero", rawSeconds: 0, multiplier: one, want: 0},
		{name: "negative", rawSeconds: -60, multiplier: one, want: 0},
		{name: "one second rounds to a block", rawSeconds: 1, multiplier: one, want: 15},
		{name: "exact block", rawSeconds: 900, multiplier: one, want: 15},
		{name: "one past a block", rawSeconds: 901, multiplier: one, want: 30},
		{name: "full hour", rawSeconds: 3600, multiplier: one, want: 60},
		{name: "half multiplier", rawSeconds: 3600, multiplier: decimal.RequireFromString("0.5"), want: 30},
		{name: "inflating multiplier", rawSeconds: 3600, multiplier: decimal.RequireFromString("1.5"), want: 90},
		{name: "tiny scaled value still bills a block", rawSeconds: 10, multiplier: decimal.RequireFromString("0.1"), want: 15},
		{name: "multiplier zero", rawSeconds: 3600, multiplier: decimal.Zero, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BillableMinutes(tt.rawSeconds, tt.multiplier))
		})
	}
}

func TestBillableMinutesAlwaysBlockAligned(t *testing.T) {
	one := decimal.NewFromInt(1)
	for raw := int64(1); raw < 4000; raw += 137 {
		minutes := BillableMinutes(raw, one)
		assert.Equal(t, int64(0), minutes%15)
		assert.True(t, minutes*60 >= raw)
	}
}

func TestRoundUpToBlocks(t *testing.T) {
	assert.Equal(t, int64(0), RoundUpToBlocks(0))
	assert.Equal(t, int64(0), RoundUpToBlocks(-5))
	assert.Equal(t, int64(900), RoundUpToBlocks(1))
	assert.Equal(t, int64(900), RoundUpToBlocks(900))
	assert.Equal(t, int64(1800), RoundUpToBlocks(901))
}

func TestSlackSeconds(t *testing.T) {
	assert.Equal(t, int64(0), SlackSeconds(0))
	assert.Equal(t, int64(0), SlackSeconds(900))
	assert.Equal(t, int64(600), SlackSeconds(3000))
	assert.Equal(t, int64(899), SlackSeconds(1))
}
