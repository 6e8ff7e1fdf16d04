package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

func mustSeats(t *testing.T, ids ...string) []model.Seat {
	t.Helper()
	out := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		s, ok := seatmap.Describe(id)
		require.True(t, ok, id)
		out = append(out, s)
	}
	return out
}

func TestQuotePremiumPair(t *testing.T) {
	calc := NewCalculator(PercentFee{Percent: 10})
	q := calc.Quote(mustSeats(t, "F5", "F6"))
	assert.Equal(t, 600, q.Subtotal)
	assert.Equal(t, 60, q.Fee)
	assert.Equal(t, 660, q.Total)
	assert.Equal(t, []string{"F5", "F6"}, q.SeatIDs())
}

func TestQuoteSubtotalIsSumOfCategoryPrices(t *testing.T) {
	calc := NewCalculator(nil)
	q := calc.Quote(mustSeats(t, "A1", "D4", "J12"))
	assert.Equal(t, 500+300+200, q.Subtotal)
	assert.Equal(t, 100, q.Fee)
	assert.Equal(t, 1100, q.Total)
}

func TestQuoteEmptySelection(t *testing.T) {
	for _, rule := range []FeeRule{PercentFee{Percent: 10}, FlatFee{Amount: 30}} {
		q := NewCalculator(rule).Quote(nil)
		assert.Equal(t, 0, q.Subtotal, rule.Name())
		assert.Equal(t, 0, q.Fee, rule.Name())
		assert.Equal(t, 0, q.Total, rule.Name())
		assert.NotNil(t, q.Lines)
	}
}

func TestPercentFeeRoundsHalfUp(t *testing.T) {
	tests := []struct {
		subtotal, percent, want int
	}{
		{600, 10, 60},
		{205, 10, 21}, // 20.5 -> 21
		{204, 10, 20}, // 20.4 -> 20
		{215, 7, 15},  // 15.05 -> 15
		{250, 3, 8},   // 7.5 -> 8
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PercentFee{Percent: tc.percent}.Fee(tc.subtotal, 1))
	}
}

func TestFlatFee(t *testing.T) {
	calc := NewCalculator(FlatFee{Amount: 30})
	q := calc.Quote(mustSeats(t, "G1", "G2"))
	assert.Equal(t, 400, q.Subtotal)
	assert.Equal(t, 30, q.Fee)
	assert.Equal(t, 430, q.Total)
	assert.Equal(t, "flat:30", q.FeeRule)
}

func TestRuleFromConfig(t *testing.T) {
	r, err := RuleFromConfig("", 10, 30)
	require.NoError(t, err)
	assert.Equal(t, PercentFee{Percent: 10}, r)

	r, err = RuleFromConfig("FLAT", 10, 30)
	require.NoError(t, err)
	assert.Equal(t, FlatFee{Amount: 30}, r)

	_, err = RuleFromConfig("tiered", 10, 30)
	assert.Error(t, err)
	_, err = RuleFromConfig("percent", -1, 0)
	assert.Error(t, err)
}

func TestQuoteIDs(t *testing.T) {
	calc := NewCalculator(nil)
	q, err := calc.QuoteIDs([]string{"F5", "F6"}, seatmap.Describe)
	require.NoError(t, err)
	assert.Equal(t, 660, q.Total)

	_, err = calc.QuoteIDs([]string{"F5", "Z1"}, seatmap.Describe)
	assert.Error(t, err)
}
