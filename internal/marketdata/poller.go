package marketdata

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// TickSink receives every fresh last price; the position tracker implements
// it to recompute floating P&L and evaluate exit triggers.
type TickSink interface {
	OnPriceUpdate(ctx context.Context, symbol string, lastPrice decimal.Decimal) error
}

// Poller refreshes tickers for the subscribed contracts on a fixed interval,
// keeps the cache current, publishes ticker events to the bus and pushes each
// price into the sink. Contract specs are resolved once at startup and reused.
type Poller struct {
	exchange Exchange
	cache    *Cache
	bus      *Bus
	sink     TickSink
	symbols  []string
	interval time.Duration
}

func NewPoller(exchange Exchange, cache *Cache, bus *Bus, sink TickSink, symbols []string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		exchange: exchange,
		cache:    cache,
		bus:      bus,
		sink:     sink,
		symbols:  symbols,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled. Individual symbol failures are logged
// and skipped; the loop itself never gives up.
func (p *Poller) Run(ctx context.Context) {
	p.loadContracts(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("marketdata: poller stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) loadContracts(ctx context.Context) {
	for _, symbol := range p.symbols {
		spec, err := p.exchange.GetContract(ctx, symbol)
		if err != nil {
			log.Printf("marketdata: load contract %s: %v", symbol, err)
			continue
		}
		p.cache.SetContract(spec)
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	for _, symbol := range p.symbols {
		tickers, err := p.exchange.ListTickers(ctx, symbol)
		if err != nil {
			log.Printf("marketdata: fetch %s: %v", symbol, err)
			continue
		}
		for _, t := range tickers {
			p.cache.SetTicker(t)
			p.bus.Publish(Event{Type: EventTicker, Data: t})
			if p.sink != nil {
				if err := p.sink.OnPriceUpdate(ctx, t.Symbol, t.LastPrice); err != nil {
					log.Printf("marketdata: tick %s: %v", t.Symbol, err)
				}
			}
		}
	}
}
