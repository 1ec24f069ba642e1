package execution

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
)

func TestHyperliquidExecutorDisabledWithoutAPIKey(t *testing.T) {
	e := NewHyperliquidExecutor(LiveExecConfig{}, NewVenueBreaker("hyperliquid", 10), nil)
	res := e.PlaceOrder(context.Background(), "BTC-PERP", "buy", 1.0, 100.0, "limit")
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Reason, "disabled")
}

func TestHyperliquidExecutorPlacesOrderAgainstTestServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	bus := eventbus.New(nil, zerolog.Nop())
	e := NewHyperliquidExecutor(LiveExecConfig{HyperliquidAPIKey: "key"}, NewVenueBreaker("hyperliquid", 10), bus)
	e.baseURL = server.URL

	res := e.PlaceOrder(context.Background(), "BTC-PERP", "buy", 1.0, 100.0, "limit")
	require.Equal(t, "ok", res.Status)
	assert.Equal(t, "ok", res.Data["status"])
}

func TestHyperliquidExecutorCancelOrderDisabled(t *testing.T) {
	e := NewHyperliquidExecutor(LiveExecConfig{}, NewVenueBreaker("hyperliquid", 10), nil)
	res := e.CancelOrder(context.Background(), "abc123")
	assert.Equal(t, "error", res.Status)
}

func TestAssetIndexKnownAndUnknownSymbols(t *testing.T) {
	assert.Equal(t, 0, assetIndex("BTC-PERP"))
	assert.Equal(t, 1, assetIndex("ETH-PERP"))
	assert.Equal(t, 2, assetIndex("SOL-USD"))
	assert.Equal(t, 0, assetIndex("UNKNOWN-PERP"))
}

func TestDriftExecutorDisabledWithoutCredentials(t *testing.T) {
	e := NewDriftExecutor(LiveExecConfig{DriftRPCURL: "http://rpc"}, NewVenueBreaker("drift", 10), nil)
	res := e.PlaceOrder(context.Background(), "SOL-PERP", "buy", 1.0, 100.0, "limit")
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Reason, "disabled")
}

func TestDriftExecutorPlacesOrderAgainstTestServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"submitted"}`))
	}))
	defer server.Close()

	bus := eventbus.New(nil, zerolog.Nop())
	e := NewDriftExecutor(LiveExecConfig{DriftRPCURL: "http://rpc", SolanaPrivateKey: "key"}, NewVenueBreaker("drift", 10), bus)
	e.baseURL = server.URL

	res := e.PlaceOrder(context.Background(), "SOL-PERP", "sell", 2.0, 50.0, "market")
	require.Equal(t, "ok", res.Status)
	assert.Equal(t, "submitted", res.Data["status"])
}

func TestJupiterExecutorDisabledWithoutPrivateKey(t *testing.T) {
	e := NewJupiterExecutor(LiveExecConfig{}, NewVenueBreaker("jupiter", 10), nil)
	res := e.GetQuote(context.Background(), "So11111111111111111111111111111111111111112", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 1000000, 50)
	assert.Equal(t, "error", res.Status)
}

func TestJupiterExecutorGetQuoteAgainstTestServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/v1/quote", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"outAmount":"123456"}`))
	}))
	defer server.Close()

	bus := eventbus.New(nil, zerolog.Nop())
	var sawSwapQuoted bool
	bus.Subscribe(eventbus.SwapQuoted, func(ctx context.Context, evt models.Event) { sawSwapQuoted = true })

	e := NewJupiterExecutor(LiveExecConfig{SolanaPrivateKey: "key", JupiterAPIURL: server.URL}, NewVenueBreaker("jupiter", 10), bus)
	res := e.GetQuote(context.Background(), "mintA", "mintB", 1000000, 50)
	require.Equal(t, "ok", res.Status)
	assert.Equal(t, "123456", res.Data["outAmount"])
	assert.True(t, sawSwapQuoted)
}

func TestNewJupiterExecutorDefaultsAPIURL(t *testing.T) {
	e := NewJupiterExecutor(LiveExecConfig{SolanaPrivateKey: "key"}, NewVenueBreaker("jupiter", 10), nil)
	assert.Equal(t, "https://api.jup.ag", e.apiURL)
}

func TestMarketIndexKnownAndUnknownSymbols(t *testing.T) {
	assert.Equal(t, 0, marketIndex("SOL-PERP"))
	assert.Equal(t, 1, marketIndex("BTC-PERP"))
	assert.Equal(t, 0, marketIndex("DOGE-PERP"))
}

func TestDisabledResultCarriesExecutorAndAction(t *testing.T) {
	res := disabledResult("jupiter_executor", "get_quote")
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Reason, "jupiter_executor")
	assert.Contains(t, res.Reason, "get_quote")
	assert.WithinDuration(t, time.Now().UTC(), res.Ts, 5*time.Second)
}
