package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-assist/internal/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTotalValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity int64
		face     string
		leverage int64
		want     string
	}{
		{"basic", 10, "0.01", 10, "1"},
		{"unit_face", 5, "1", 3, "15"},
		{"zero_quantity", 0, "1", 10, "0"},
		{"zero_face", 10, "0", 10, "0"},
		{"zero_leverage", 10, "1", 0, "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TotalValue(tt.quantity, dec(tt.face), tt.leverage)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestQuantityFromValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    string
		face     string
		leverage int64
		want     int64
	}{
		{"whole_lots", "5000", "0.01", 3, 500000},
		{"rounds_down", "99.99", "10", 1, 9},
		{"exact", "100", "10", 1, 10},
		{"zero_face", "100", "0", 1, 0},
		{"negative_face", "100", "-1", 1, 0},
		{"zero_leverage", "100", "10", 0, 0},
		{"zero_total", "0", "10", 1, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := QuantityFromValue(dec(tt.total), dec(tt.face), tt.leverage)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Quantity never over-commits: quantity * faceValue <= totalValue.
func TestQuantityFromValue_NeverOverCommits(t *testing.T) {
	t.Parallel()

	totals := []string{"1", "3.33", "100", "5000", "123456.789"}
	faces := []string{"0.01", "0.1", "1", "7", "250"}
	for _, total := range totals {
		for _, face := range faces {
			qty := QuantityFromValue(dec(total), dec(face), 5)
			require.GreaterOrEqual(t, qty, int64(0))
			spent := dec(face).Mul(decimal.NewFromInt(qty))
			assert.True(t, spent.LessThanOrEqual(dec(total)),
				"total=%s face=%s qty=%d spent=%s", total, face, qty, spent)
		}
	}
}

func TestMarginFromValue(t *testing.T) {
	t.Parallel()

	got, err := MarginFromValue(dec("5000"), 3)
	require.NoError(t, err)
	assert.True(t, got.Sub(dec("1666.67")).Abs().LessThan(dec("0.01")), "got %s", got)

	_, err = MarginFromValue(dec("5000"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivisionInvalid)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "leverage", inputErr.Field)
}

func TestStopLossAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		direction types.Direction
		quantity  int64
		entry     string
		stop      string
		face      string
		want      string
	}{
		// Scenario A and B from the desk's reference sheet.
		{"long_stop_below", types.DirectionLong, 10, "100", "90", "1", "100"},
		{"short_stop_above", types.DirectionShort, 10, "100", "110", "1", "100"},
		// Stop on the "wrong" side still yields a non-negative amount.
		{"long_stop_above", types.DirectionLong, 10, "100", "110", "1", "100"},
		{"short_stop_below", types.DirectionShort, 10, "100", "90", "1", "100"},
		{"quanto_face", types.DirectionLong, 100, "50000", "49000", "0.01", "1000"},
		{"at_entry", types.DirectionLong, 10, "100", "100", "1", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StopLossAmount(tt.quantity, dec(tt.entry), dec(tt.stop), dec(tt.face), tt.direction)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestStopLossPercentage(t *testing.T) {
	t.Parallel()

	got, err := StopLossPercentage(dec("100"), dec("1000"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("10")))

	// Not clamped: a stop bigger than margin is an advisory, not an error.
	got, err = StopLossPercentage(dec("1500"), dec("1000"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("150")))

	_, err = StopLossPercentage(dec("100"), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionInvalid)
}

func TestStopLossPrice(t *testing.T) {
	t.Parallel()

	// margin 1000, pct 10 -> amount 100; qty 10, face 1 -> diff 10.
	long, err := StopLossPrice(dec("100"), dec("10"), dec("1000"), 10, dec("1"), types.DirectionLong)
	require.NoError(t, err)
	assert.True(t, long.Equal(dec("90")), "got %s", long)

	short, err := StopLossPrice(dec("100"), dec("10"), dec("1000"), 10, dec("1"), types.DirectionShort)
	require.NoError(t, err)
	assert.True(t, short.Equal(dec("110")), "got %s", short)

	_, err = StopLossPrice(dec("100"), dec("10"), dec("1000"), 0, dec("1"), types.DirectionLong)
	assert.ErrorIs(t, err, ErrDivisionInvalid)

	_, err = StopLossPrice(dec("100"), dec("10"), dec("1000"), 10, decimal.Zero, types.DirectionLong)
	assert.ErrorIs(t, err, ErrDivisionInvalid)
}

// Round-trip law: amount -> percentage -> price reproduces the original stop
// within 1e-4.
func TestStopLossRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		direction types.Direction
		entry     string
		stop      string
		quantity  int64
		face      string
		margin    string
	}{
		{"long_btc", types.DirectionLong, "50000", "48500", 20, "0.01", "2500"},
		{"short_btc", types.DirectionShort, "50000", "51200", 20, "0.01", "2500"},
		{"long_unit", types.DirectionLong, "100", "93.5", 10, "1", "400"},
		{"short_small_face", types.DirectionShort, "2.5", "2.75", 1000, "0.001", "50"},
	}

	tolerance := dec("0.0001")
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			amount := StopLossAmount(tt.quantity, dec(tt.entry), dec(tt.stop), dec(tt.face), tt.direction)
			pct, err := StopLossPercentage(amount, dec(tt.margin))
			require.NoError(t, err)
			back, err := StopLossPrice(dec(tt.entry), pct, dec(tt.margin), tt.quantity, dec(tt.face), tt.direction)
			require.NoError(t, err)
			assert.True(t, back.Sub(dec(tt.stop)).Abs().LessThan(tolerance),
				"round trip %s -> %s", tt.stop, back)
		})
	}
}

func TestStopLossPriceFromRatio(t *testing.T) {
	t.Parallel()

	long := StopLossPriceFromRatio(dec("200"), dec("5"), types.DirectionLong)
	assert.True(t, long.Equal(dec("190")))

	short := StopLossPriceFromRatio(dec("200"), dec("5"), types.DirectionShort)
	assert.True(t, short.Equal(dec("210")))

	// >= 100% for a long yields a non-positive stop; still a valid output.
	degenerate := StopLossPriceFromRatio(dec("200"), dec("150"), types.DirectionLong)
	assert.True(t, degenerate.Equal(dec("-100")))
}

func TestTakeProfitPriceDefault(t *testing.T) {
	t.Parallel()

	long := TakeProfitPriceDefault(dec("123.45"), types.DirectionLong)
	assert.True(t, long.Equal(dec("246.9")))

	// Degenerate short default kept for compatibility.
	short := TakeProfitPriceDefault(dec("123.45"), types.DirectionShort)
	assert.True(t, short.IsZero())
}

func TestFloatingPnL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		direction types.Direction
		quantity  int64
		entry     string
		last      string
		want      string
	}{
		{"long_profit", types.DirectionLong, 2, "50000", "51000", "2000"},
		{"short_loss", types.DirectionShort, 2, "50000", "51000", "-2000"},
		{"long_loss", types.DirectionLong, 5, "100", "90", "-50"},
		{"short_profit", types.DirectionShort, 5, "100", "90", "50"},
		{"flat", types.DirectionLong, 3, "75", "75", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FloatingPnL(tt.direction, tt.quantity, dec(tt.entry), dec(tt.last))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

// FloatingPnL is antisymmetric across direction for the same prices.
func TestFloatingPnLAntisymmetric(t *testing.T) {
	t.Parallel()

	prices := [][2]string{{"100", "101"}, {"100", "99"}, {"50000", "43211.5"}, {"2.5", "2.5"}}
	for _, p := range prices {
		long := FloatingPnL(types.DirectionLong, 7, dec(p[0]), dec(p[1]))
		short := FloatingPnL(types.DirectionShort, 7, dec(p[0]), dec(p[1]))
		assert.True(t, long.Equal(short.Neg()), "entry=%s last=%s long=%s short=%s", p[0], p[1], long, short)
	}
}
