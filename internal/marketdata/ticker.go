package marketdata

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is the per-contract 24h snapshot shown on the watch list and fed
// into the position tracker on every poll.
type Ticker struct {
	Symbol           string          `json:"symbol"`
	Contract         string          `json:"contract"`
	LastPrice        decimal.Decimal `json:"last_price"`
	ChangePercentage decimal.Decimal `json:"change_percentage"`
	Volume24H        decimal.Decimal `json:"volume_24h"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ContractSpec is the read-only reference data needed for sizing. FaceValue
// is the quanto multiplier: the monetary value of one contract unit.
type ContractSpec struct {
	Symbol    string          `json:"symbol"`
	FaceValue decimal.Decimal `json:"face_value"`
}

// Cache holds the latest ticker and contract spec per symbol. Reads vastly
// outnumber writes (one writer: the poller), hence the RWMutex.
type Cache struct {
	mu        sync.RWMutex
	tickers   map[string]Ticker
	contracts map[string]ContractSpec
}

func NewCache() *Cache {
	return &Cache{
		tickers:   make(map[string]Ticker),
		contracts: make(map[string]ContractSpec),
	}
}

func (c *Cache) SetTicker(t Ticker) {
	if t.Symbol == "" || t.LastPrice.LessThanOrEqual(decimal.Zero) {
		return
	}
	c.mu.Lock()
	c.tickers[t.Symbol] = t
	c.mu.Unlock()
}

func (c *Cache) Ticker(symbol string) (Ticker, bool) {
	c.mu.RLock()
	t, ok := c.tickers[symbol]
	c.mu.RUnlock()
	return t, ok
}

func (c *Cache) Tickers() []Ticker {
	c.mu.RLock()
	out := make([]Ticker, 0, len(c.tickers))
	for _, t := range c.tickers {
		out = append(out, t)
	}
	c.mu.RUnlock()
	return out
}

func (c *Cache) SetContract(spec ContractSpec) {
	if spec.Symbol == "" {
		return
	}
	c.mu.Lock()
	c.contracts[spec.Symbol] = spec
	c.mu.Unlock()
}

// ContractFaceValue reports the face value for a symbol. A missing spec or a
// non-positive multiplier both come back as "not sizeable".
func (c *Cache) ContractFaceValue(symbol string) (decimal.Decimal, bool) {
	c.mu.RLock()
	spec, ok := c.contracts[symbol]
	c.mu.RUnlock()
	if !ok || spec.FaceValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return spec.FaceValue, true
}

// LastPrice is the narrow lookup used during floating-P&L recomputation.
func (c *Cache) LastPrice(symbol string) (decimal.Decimal, bool) {
	t, ok := c.Ticker(symbol)
	if !ok {
		return decimal.Zero, false
	}
	return t.LastPrice, true
}
