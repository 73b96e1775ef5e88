package marketdata

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCacheTickerRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.SetTicker(Ticker{Symbol: "BTC_USDT", LastPrice: dec("65000")})

	got, ok := c.Ticker("BTC_USDT")
	require.True(t, ok)
	assert.True(t, got.LastPrice.Equal(dec("65000")))

	last, ok := c.LastPrice("BTC_USDT")
	require.True(t, ok)
	assert.True(t, last.Equal(dec("65000")))

	_, ok = c.Ticker("ETH_USDT")
	assert.False(t, ok)
}

func TestCacheRejectsNonPositiveLast(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.SetTicker(Ticker{Symbol: "BTC_USDT", LastPrice: dec("65000")})
	c.SetTicker(Ticker{Symbol: "BTC_USDT", LastPrice: decimal.Zero})

	last, ok := c.LastPrice("BTC_USDT")
	require.True(t, ok)
	assert.True(t, last.Equal(dec("65000")), "stale price must survive a bad update")
}

func TestCacheContractFaceValue(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.SetContract(ContractSpec{Symbol: "BTC_USDT", FaceValue: dec("0.0001")})

	face, ok := c.ContractFaceValue("BTC_USDT")
	require.True(t, ok)
	assert.True(t, face.Equal(dec("0.0001")))

	_, ok = c.ContractFaceValue("ETH_USDT")
	assert.False(t, ok)
}

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	b := NewBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Type: EventTicker, Data: "x"})

	assert.Equal(t, EventTicker, (<-a).Type)
	assert.Equal(t, EventTicker, (<-c).Type)
}

func TestBusDropsSlowSubscriber(t *testing.T) {
	t.Parallel()

	b := NewBus()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill past the buffer; Publish must not block.
	for i := 0; i < 150; i++ {
		b.Publish(Event{Type: EventTicker})
	}
	assert.Len(t, ch, 100)
}

func TestParseTicker(t *testing.T) {
	t.Parallel()

	got, err := parseTicker(tickerPayload{
		Contract:         "BTC_USDT",
		Last:             "65123.4",
		ChangePercentage: "-1.25",
		Volume24h:        "987654",
	})
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", got.Symbol)
	assert.True(t, got.LastPrice.Equal(dec("65123.4")))
	assert.True(t, got.ChangePercentage.Equal(dec("-1.25")))

	_, err = parseTicker(tickerPayload{Contract: "BTC_USDT", Last: "not-a-number"})
	assert.Error(t, err)
}

func TestAllowOrigin(t *testing.T) {
	t.Parallel()

	req := func(origin string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/v1/ws", nil)
		r.Header.Set("Origin", origin)
		return r
	}

	assert.True(t, allowOrigin(req("https://evil.example"), "*"))
	assert.True(t, allowOrigin(req("http://localhost:5173"), "http://localhost:3000"))
	assert.True(t, allowOrigin(req("https://app.example.com"), "https://app.example.com"))
	assert.False(t, allowOrigin(req("https://evil.example"), "https://app.example.com"))
}
