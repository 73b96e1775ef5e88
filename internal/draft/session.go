package draft

import (
	"sync"

	"github.com/shopspring/decimal"
)

// ContractLookup resolves a contract's face value (quanto multiplier) from
// whatever market-data source backs the session. A false return means the
// contract is not sizeable yet.
type ContractLookup interface {
	ContractFaceValue(symbol string) (decimal.Decimal, bool)
}

// Session gives a draft its single logical owner. The original system
// serialized all mutations on the UI event thread; here the mutex enforces
// the same single-writer discipline for callers arriving from HTTP handlers
// or the price-update loop.
type Session struct {
	mu        sync.Mutex
	draft     Draft
	contracts ContractLookup
}

func NewSession(contracts ContractLookup) *Session {
	return &Session{draft: New(), contracts: contracts}
}

// Update runs fn while holding exclusive ownership of the draft.
func (s *Session) Update(fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.draft)
}

// SelectContract resolves the symbol's face value and binds it to the draft.
func (s *Session) SelectContract(symbol string) error {
	face, ok := s.contracts.ContractFaceValue(symbol)
	if !ok {
		return ErrNoContract
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetContract(symbol, face)
}

// Snapshot returns a consistent value copy of the current draft.
func (s *Session) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Snapshot()
}

// Reset replaces the draft with a fresh one, e.g. after submission.
func (s *Session) Reset() {
	s.mu.Lock()
	s.draft = New()
	s.mu.Unlock()
}
