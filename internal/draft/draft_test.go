package draft

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-assist/internal/pricing"
	"futures-assist/internal/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	d := New()
	require.NoError(t, d.SetContract("BTC_USDT", dec("0.01")))
	require.NoError(t, d.SetEntryPrice(dec("50000")))
	require.NoError(t, d.SetLeverage(10))
	return &d
}

func TestQuantityDriven(t *testing.T) {
	t.Parallel()

	d := newTestDraft(t)
	require.NoError(t, d.SetQuantity(100))

	// total = 100 * 0.01 * 10 = 10, margin = total / 10 = 1
	assert.Equal(t, ModeQuantity, d.Mode)
	assert.True(t, d.TotalValue.Equal(dec("10")), "total %s", d.TotalValue)
	assert.True(t, d.Margin.Equal(dec("1")), "margin %s", d.Margin)
}

func TestMarginDriven(t *testing.T) {
	t.Parallel()

	d := newTestDraft(t)
	require.NoError(t, d.SetMargin(dec("500")))

	// total = 500 * 10 = 5000, qty = floor(5000 / 0.01) = 500000
	assert.Equal(t, ModeMargin, d.Mode)
	assert.True(t, d.TotalValue.Equal(dec("5000")), "total %s", d.TotalValue)
	assert.Equal(t, int64(500000), d.Quantity)
}

// Whatever drove the last edit, the triad must be mutually consistent when
// the mutation returns: no stale quantity after a margin edit and vice versa.
func TestTriadNeverStale(t *testing.T) {
	t.Parallel()

	d := newTestDraft(t)
	require.NoError(t, d.SetQuantity(100))
	require.NoError(t, d.SetMargin(dec("250")))

	assert.True(t, d.TotalValue.Equal(dec("2500")))
	assert.Equal(t, int64(250000), d.Quantity)

	require.NoError(t, d.SetQuantity(50))
	assert.True(t, d.TotalValue.Equal(dec("5")), "total %s", d.TotalValue)
	assert.True(t, d.Margin.Equal(dec("0.5")), "margin %s", d.Margin)
}

func TestFailedMutationLeavesDraftUnchanged(t *testing.T) {
	t.Parallel()

	d := newTestDraft(t)
	require.NoError(t, d.SetQuantity(100))
	before := d.Snapshot()

	err := d.SetStopLossPercentage(dec("-5"))
	require.Error(t, err)
	assert.Equal(t, before, d.Snapshot())

	err = d.SetEntryPrice(decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, before, d.Snapshot())
}

func TestStopLossFromPrice(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.SetContract("TEST", dec("1")))
	require.NoError(t, d.SetEntryPrice(dec("100")))
	require.NoError(t, d.SetLeverage(1))
	require.NoError(t, d.SetQuantity(10))
	// margin = 10 * 1 * 1 / 1 = 10... total = 10, margin = 10
	require.NoError(t, d.SetStopLossPrice(dec("90")))

	assert.True(t, d.StopLossAmount.Equal(dec("100")), "amount %s", d.StopLossAmount)
	assert.True(t, d.StopLossPercentage.Equal(dec("1000")), "pct %s", d.StopLossPercentage)
}

func TestStopLossFromPercentage(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.SetContract("TEST", dec("1")))
	require.NoError(t, d.SetEntryPrice(dec("100")))
	require.NoError(t, d.SetLeverage(1))
	require.NoError(t, d.SetQuantity(10))
	require.NoError(t, d.SetStopLossPercentage(dec("50")))

	// margin 10, amount = 10 * 50 / 100 = 5, diff = 5 / (10*1) = 0.5
	assert.True(t, d.StopLossAmount.Equal(dec("5")), "amount %s", d.StopLossAmount)
	assert.True(t, d.StopLossPrice.Equal(dec("99.5")), "price %s", d.StopLossPrice)
}

func TestDirectionChangeRecomputesStopBlock(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.SetContract("TEST", dec("1")))
	require.NoError(t, d.SetEntryPrice(dec("100")))
	require.NoError(t, d.SetLeverage(1))
	require.NoError(t, d.SetQuantity(10))
	require.NoError(t, d.SetStopLossPrice(dec("90")))
	longAmount := d.StopLossAmount

	require.NoError(t, d.SetDirection(types.DirectionShort))
	// Same |diff|, so same absolute amount; block was re-derived, not stale.
	assert.True(t, d.StopLossAmount.Equal(longAmount))
	assert.Equal(t, types.DirectionShort, d.Direction)
}

func TestTakeProfitDefaults(t *testing.T) {
	t.Parallel()

	d := newTestDraft(t)
	require.NoError(t, d.SetQuantity(10))
	// Long default: entry * 2.
	assert.True(t, d.TakeProfitPrice.Equal(dec("100000")), "tp %s", d.TakeProfitPrice)

	s := New()
	require.NoError(t, s.SetContract("TEST", dec("1")))
	require.NoError(t, s.SetDirection(types.DirectionShort))
	require.NoError(t, s.SetEntryPrice(dec("100")))
	// Short default is the degenerate 0: "no bounded target".
	assert.True(t, s.TakeProfitPrice.IsZero())
}

func TestApplyRiskBudget(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.SetContract("BTC_USDT", dec("0.01")))
	require.NoError(t, d.SetLeverage(3))
	require.NoError(t, d.SetEntryPrice(dec("50000")))

	require.NoError(t, d.ApplyRiskBudget(dec("1000"), dec("0.5"), dec("10")))

	assert.Equal(t, ModeRisk, d.Mode)
	assert.True(t, d.RiskAmount.Equal(dec("500")), "risk %s", d.RiskAmount)
	assert.True(t, d.TotalValue.Equal(dec("5000")), "total %s", d.TotalValue)
	assert.True(t, d.Margin.Sub(dec("1666.67")).Abs().LessThan(dec("0.01")), "margin %s", d.Margin)
	assert.Equal(t, int64(500000), d.Quantity)
}

func TestApplyRiskBudgetValidation(t *testing.T) {
	t.Parallel()

	base := func(t *testing.T) *Draft {
		d := New()
		require.NoError(t, d.SetContract("TEST", dec("0.01")))
		require.NoError(t, d.SetLeverage(3))
		return &d
	}

	t.Run("zero_stop_loss_pct", func(t *testing.T) {
		t.Parallel()
		d := base(t)
		err := d.ApplyRiskBudget(dec("1000"), dec("1"), decimal.Zero)
		require.Error(t, err)
		var ie *pricing.InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "stop_loss_percentage", ie.Field)
	})

	t.Run("missing_contract", func(t *testing.T) {
		t.Parallel()
		d := New()
		require.NoError(t, d.SetLeverage(3))
		err := d.ApplyRiskBudget(dec("1000"), dec("1"), dec("10"))
		require.Error(t, err)
		var ie *pricing.InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "face_value", ie.Field)
	})

	t.Run("zero_budget", func(t *testing.T) {
		t.Parallel()
		d := base(t)
		err := d.ApplyRiskBudget(decimal.Zero, dec("1"), dec("10"))
		require.Error(t, err)
		var ie *pricing.InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "risk_budget", ie.Field)
	})
}

func TestSizeable(t *testing.T) {
	t.Parallel()

	d := New()
	assert.False(t, d.Sizeable())
	require.NoError(t, d.SetContract("TEST", dec("0.5")))
	assert.True(t, d.Sizeable())

	err := d.SetContract("BAD", decimal.Zero)
	assert.ErrorIs(t, err, ErrNoContract)
}

type staticContracts map[string]string

func (s staticContracts) ContractFaceValue(symbol string) (decimal.Decimal, bool) {
	raw, ok := s[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return dec(raw), true
}

func TestSessionSelectContract(t *testing.T) {
	t.Parallel()

	sess := NewSession(staticContracts{"BTC_USDT": "0.01"})
	require.NoError(t, sess.SelectContract("BTC_USDT"))
	assert.ErrorIs(t, sess.SelectContract("ETH_USDT"), ErrNoContract)

	snap := sess.Snapshot()
	assert.Equal(t, "BTC_USDT", snap.Symbol)
	assert.True(t, snap.FaceValue.Equal(dec("0.01")))
}

func TestSessionUpdateOwnership(t *testing.T) {
	t.Parallel()

	sess := NewSession(staticContracts{"BTC_USDT": "0.01"})
	require.NoError(t, sess.SelectContract("BTC_USDT"))
	require.NoError(t, sess.Update(func(d *Draft) error {
		if err := d.SetEntryPrice(dec("50000")); err != nil {
			return err
		}
		if err := d.SetLeverage(5); err != nil {
			return err
		}
		return d.SetQuantity(10)
	}))

	snap := sess.Snapshot()
	assert.Equal(t, int64(10), snap.Quantity)
	assert.True(t, snap.TotalValue.Equal(dec("0.5")))

	sess.Reset()
	assert.Equal(t, "", sess.Snapshot().Symbol)
}
