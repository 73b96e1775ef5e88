package marketdata

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is the narrow surface the assistant needs from the futures
// exchange: tickers, contract reference data and a connectivity probe.
type Exchange interface {
	ListTickers(ctx context.Context, contract string) ([]Ticker, error)
	GetContract(ctx context.Context, contract string) (ContractSpec, error)
	Ping(ctx context.Context) error
}

// Client talks to the exchange's v4 REST API for the USDT-settled futures
// settle group. Public market-data endpoints work without credentials;
// key/secret are only needed for the signed connectivity probe.
type Client struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
}

func NewClient(baseURL, key, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type tickerPayload struct {
	Contract         string `json:"contract"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
	Volume24h        string `json:"volume_24h"`
}

type contractPayload struct {
	Name             string `json:"name"`
	QuantoMultiplier string `json:"quanto_multiplier"`
}

func (c *Client) ListTickers(ctx context.Context, contract string) ([]Ticker, error) {
	q := url.Values{}
	if contract != "" {
		q.Set("contract", contract)
	}
	var payload []tickerPayload
	if err := c.get(ctx, "/futures/usdt/tickers", q, &payload); err != nil {
		return nil, err
	}
	out := make([]Ticker, 0, len(payload))
	for _, p := range payload {
		if p.Contract == "" {
			continue
		}
		t, err := parseTicker(p)
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w", p.Contract, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) GetContract(ctx context.Context, contract string) (ContractSpec, error) {
	var payload contractPayload
	if err := c.get(ctx, "/futures/usdt/contracts/"+contract, nil, &payload); err != nil {
		return ContractSpec{}, err
	}
	face, err := decimal.NewFromString(payload.QuantoMultiplier)
	if err != nil {
		return ContractSpec{}, fmt.Errorf("contract %s: bad quanto multiplier %q", contract, payload.QuantoMultiplier)
	}
	return ContractSpec{Symbol: payload.Name, FaceValue: face}, nil
}

// Ping issues a signed account request; it is the "test connection" used when
// the operator saves credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c.key == "" || c.secret == "" {
		return errors.New("api credentials not configured")
	}
	var out json.RawMessage
	return c.get(ctx, "/futures/usdt/accounts", nil, &out)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	query := ""
	if len(q) > 0 {
		query = q.Encode()
		u += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.key != "" && c.secret != "" {
		c.sign(req, path, query)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange returned %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return json.Unmarshal(body, dst)
}

// sign applies the v4 HMAC-SHA512 request signature:
// hex(hmac(secret, method\npath\nquery\nsha512(body)\ntimestamp)).
func (c *Client) sign(req *http.Request, path, query string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	bodyHash := sha512.Sum512(nil)
	msg := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		req.Method, path, query, hex.EncodeToString(bodyHash[:]), ts)
	mac := hmac.New(sha512.New, []byte(c.secret))
	mac.Write([]byte(msg))
	req.Header.Set("KEY", c.key)
	req.Header.Set("Timestamp", ts)
	req.Header.Set("SIGN", hex.EncodeToString(mac.Sum(nil)))
}

func parseTicker(p tickerPayload) (Ticker, error) {
	last, err := decimal.NewFromString(p.Last)
	if err != nil {
		return Ticker{}, fmt.Errorf("bad last price %q", p.Last)
	}
	change, err := decimal.NewFromString(p.ChangePercentage)
	if err != nil {
		return Ticker{}, fmt.Errorf("bad change percentage %q", p.ChangePercentage)
	}
	volume, err := decimal.NewFromString(p.Volume24h)
	if err != nil {
		return Ticker{}, fmt.Errorf("bad 24h volume %q", p.Volume24h)
	}
	return Ticker{
		Symbol:           p.Contract,
		Contract:         p.Contract,
		LastPrice:        last,
		ChangePercentage: change,
		Volume24H:        volume,
		UpdatedAt:        time.Now().UTC(),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// DisabledExchange satisfies Exchange when no endpoint is configured, e.g. in
// tests or an offline deployment.
type DisabledExchange struct{}

func (DisabledExchange) ListTickers(ctx context.Context, contract string) ([]Ticker, error) {
	return nil, errors.New("exchange not configured")
}

func (DisabledExchange) GetContract(ctx context.Context, contract string) (ContractSpec, error) {
	return ContractSpec{}, errors.New("exchange not configured")
}

func (DisabledExchange) Ping(ctx context.Context) error {
	return errors.New("exchange not configured")
}
