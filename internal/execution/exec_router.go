package execution

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sawpanic/riskdesk/internal/agents"
	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/risk"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// liveOrderPlacer is the subset of a live venue executor ExecutionRouter
// needs. HyperliquidExecutor and DriftExecutor both satisfy it; Jupiter
// never does (it only quotes), matching _get_live_executor's venue set.
type liveOrderPlacer interface {
	PlaceOrder(ctx context.Context, market, side string, size, price float64, orderType string) LiveOrderResult
}

// RouteOrderResult is the outcome of one routed order. Status is one of
// paper_filled, blocked, agent_blocked, error, paper_fallback, live_ok.
type RouteOrderResult struct {
	Status          string
	Reasons         []string
	OrderID         string
	FillPrice       float64
	Venue           string
	Market          string
	Side            string
	Size            float64
	ExecutionMode   string
	PriceSource     string
	DataAgeMs       *float64
	IntegrityStatus string
	DataQuality     string
	Ts              time.Time
}

// ExecutionRouter is the desk's single entry point for turning a decided
// action into either a paper fill or a live venue order. It never decides
// whether to trade; it only arbitrates the price the trade prices against,
// enforces guardrails and (in live mode) the execution agent's pre-trade
// check, and falls back to paper when a live venue can't take the order.
type ExecutionRouter struct {
	mode string // paper|live
	bus  *eventbus.Bus

	priceAuthority *PriceAuthority
	priceValidator *PriceValidator
	riskEngine     *risk.Engine
	riskState      *models.RiskState
	execAgent      *agents.ExecutionAgent
	paper          *PaperExecutor
	hyperliquid    liveOrderPlacer
	drift          liveOrderPlacer

	freshnessThresholdS float64
	integrityBlockLive  bool
}

// NewExecutionRouter composes the desk's already-constructed price,
// risk, agent, and execution pieces into one routing decision. hyperliquid
// and drift may be nil (e.g. in paper-only deployments); a live order
// for a venue whose executor is nil or not enabled is routed to the
// paper executor instead, without calling PlaceOrder.
func NewExecutionRouter(
	mode string,
	bus *eventbus.Bus,
	priceAuthority *PriceAuthority,
	priceValidator *PriceValidator,
	riskEngine *risk.Engine,
	riskState *models.RiskState,
	execAgent *agents.ExecutionAgent,
	paper *PaperExecutor,
	hyperliquid *HyperliquidExecutor,
	drift *DriftExecutor,
	freshnessThresholdS float64,
	integrityBlockLive bool,
) *ExecutionRouter {
	r := &ExecutionRouter{
		mode: mode, bus: bus,
		priceAuthority: priceAuthority, priceValidator: priceValidator,
		riskEngine: riskEngine, riskState: riskState,
		execAgent: execAgent, paper: paper,
		freshnessThresholdS: freshnessThresholdS, integrityBlockLive: integrityBlockLive,
	}
	if hyperliquid != nil {
		r.hyperliquid = hyperliquid
	}
	if drift != nil {
		r.drift = drift
	}
	return r
}

// RouteOrder is the eight-step decision: resolve the price authority's
// quote for market, block on missing data, block-or-degrade on stale data,
// gate on cross-venue price integrity, enforce the guardrail engine, run
// the execution agent's pre-trade check (live mode only), then dispatch to
// paper or a live venue (falling back to paper if none is wired or the
// live call fails). snapshot is the caller's current microstructure read
// for market (spread/depth/integrity); pass the zero value when none is
// available — PreTradeCheck treats an unreported depth as unconstrained.
func (r *ExecutionRouter) RouteOrder(ctx context.Context, venue, market, side string, size, price float64, snapshot agents.MarketSnapshot) RouteOrderResult {
	if r.mode != "paper" && r.mode != "live" {
		return RouteOrderResult{Status: "error", Reasons: []string{fmt.Sprintf("unknown execution mode %q", r.mode)}, Venue: venue, Market: market, Side: side, Size: size, Ts: timeutil.NowUTC()}
	}

	now := timeutil.NowUTC()
	priceResult := r.priceAuthority.GetPrice(market)

	fillPrice := price
	if fillPrice <= 0 {
		fillPrice = priceResult.Price
	}

	var ageMs *float64
	fresh := true
	if priceResult.Found {
		ageSeconds := now.Sub(priceResult.Ts).Seconds()
		ms := ageSeconds * 1000.0
		ageMs = &ms
		fresh = ageSeconds <= r.freshnessThresholdS
	}

	integrityStatus := "OK"
	if r.priceValidator != nil {
		integrityStatus = r.priceValidator.Status()
	}

	result := RouteOrderResult{
		Venue: venue, Market: market, Side: side, Size: size,
		PriceSource: priceResult.Source, DataAgeMs: ageMs,
		IntegrityStatus: integrityStatus, DataQuality: "OK", Ts: now,
	}

	// Step 2: no price at all, nothing to fill against.
	if !priceResult.Found && fillPrice <= 0 {
		reason := fmt.Sprintf("No price data available for %s", market)
		r.emit(ctx, eventbus.TradeBlockedStaleData, venue, market, side, size, reason)
		result.Status = "blocked"
		result.Reasons = []string{reason}
		return result
	}

	// Step 3: stale price — block in live mode, degrade-and-continue in paper.
	if priceResult.Found && !fresh {
		if r.mode == "live" {
			reason := fmt.Sprintf("Price for %s is %.1fs old, exceeds freshness threshold of %.0fs", market, *ageMs/1000.0, r.freshnessThresholdS)
			r.emit(ctx, eventbus.TradeBlockedStaleData, venue, market, side, size, reason)
			result.Status = "blocked"
			result.Reasons = []string{reason}
			return result
		}
		result.DataQuality = "DEGRADED"
		r.emit(ctx, eventbus.TradeDegradedData, venue, market, side, size, "Paper trade with stale data")
	}

	// Step 4: cross-venue price integrity gate.
	if integrityStatus == "WARNING" {
		if r.mode == "live" && r.integrityBlockLive {
			reason := "Price integrity WARNING - cross-venue deviation too high"
			r.emit(ctx, eventbus.TradeBlockedStaleData, venue, market, side, size, reason)
			result.Status = "blocked"
			result.Reasons = []string{reason}
			return result
		}
		result.DataQuality = "DEGRADED"
		r.emit(ctx, eventbus.TradeDegradedData, venue, market, side, size, "Paper trade with integrity WARNING")
	}

	// Step 5: guardrails.
	positions := r.paper.GetPositions()
	proposed := risk.ProposedAction{Venue: venue, Market: market, Side: side, Size: size, Price: fillPrice}
	allowed, reasons := r.riskEngine.CheckConstraints(r.riskState, positions, proposed, r.mode)
	if !allowed {
		r.bus.Emit(ctx, eventbus.RiskThrottleOn, "execution_router", map[string]interface{}{
			"reasons": reasons, "venue": venue, "market": market, "side": side, "size": size,
		})
		result.Status = "blocked"
		result.Reasons = reasons
		return result
	}

	// Step 6: live-only pre-trade check against current microstructure.
	if r.mode == "live" {
		order := agents.PreTradeOrder{Venue: venue, Market: market, Side: side, Size: size}
		verdict := r.execAgent.PreTradeCheck(order, snapshot)
		if !verdict.Allowed {
			r.bus.Emit(ctx, eventbus.AgentBlocked, "execution_router", map[string]interface{}{
				"reasons": verdict.Reasons, "venue": venue, "market": market, "side": side, "size": size,
			})
			result.Status = "agent_blocked"
			result.Reasons = verdict.Reasons
			return result
		}
	}

	// Step 7: paper dispatch.
	if r.mode == "paper" {
		order := r.paper.PlaceOrder(ctx, venue, market, side, size, "market", fillPrice, OrderContext{
			PriceSource: priceResult.Source, IntegrityStatus: integrityStatus,
			ExecutionMode: "paper", DataAgeMs: ageMs, DataQuality: result.DataQuality,
		})
		result.Status = order.Status
		result.OrderID = order.OrderID
		result.FillPrice = order.FillPrice
		result.ExecutionMode = "paper"
		return result
	}

	// Step 8: live dispatch, falling back to paper if no executor is wired
	// or the venue call itself fails.
	executor := r.liveExecutor(venue)
	if executor == nil {
		return r.paperFallback(ctx, venue, market, side, size, fillPrice, priceResult.Source, integrityStatus, ageMs, result.DataQuality, nil)
	}

	liveResult := executor.PlaceOrder(ctx, market, side, size, fillPrice, "market")
	if liveResult.Status != "ok" {
		return r.paperFallback(ctx, venue, market, side, size, fillPrice, priceResult.Source, integrityStatus, ageMs, result.DataQuality, []string{liveResult.Reason})
	}

	result.Status = "live_ok"
	result.ExecutionMode = "live"
	result.FillPrice = fillPrice
	return result
}

func (r *ExecutionRouter) paperFallback(ctx context.Context, venue, market, side string, size, fillPrice float64, priceSource, integrityStatus string, ageMs *float64, dataQuality string, reasons []string) RouteOrderResult {
	order := r.paper.PlaceOrder(ctx, venue, market, side, size, "market", fillPrice, OrderContext{
		PriceSource: priceSource, IntegrityStatus: integrityStatus,
		ExecutionMode: "paper_fallback", DataAgeMs: ageMs, DataQuality: dataQuality,
	})
	return RouteOrderResult{
		Status: "paper_fallback", Reasons: reasons,
		OrderID: order.OrderID, FillPrice: order.FillPrice,
		Venue: venue, Market: market, Side: side, Size: size,
		ExecutionMode: "paper_fallback", PriceSource: priceSource,
		DataAgeMs: ageMs, IntegrityStatus: integrityStatus, DataQuality: dataQuality,
		Ts: timeutil.NowUTC(),
	}
}

// liveExecutor returns the live venue executor for venue, or nil if the
// venue isn't hyperliquid/drift or its executor is disabled (missing
// credentials). Jupiter is intentionally never returned: it only quotes.
func (r *ExecutionRouter) liveExecutor(venue string) liveOrderPlacer {
	switch strings.ToLower(venue) {
	case "hyperliquid":
		if hl, ok := r.hyperliquid.(*HyperliquidExecutor); ok && hl != nil && hl.enabled {
			return r.hyperliquid
		}
	case "drift":
		if dr, ok := r.drift.(*DriftExecutor); ok && dr != nil && dr.enabled {
			return r.drift
		}
	}
	return nil
}

func (r *ExecutionRouter) emit(ctx context.Context, eventType, venue, market, side string, size float64, reason string) {
	if r.bus == nil {
		return
	}
	r.bus.Emit(ctx, eventType, "execution_router", map[string]interface{}{
		"reason": reason, "venue": venue, "market": market, "side": side, "size": size,
	})
}

// RouterStatus is a point-in-time summary of the router's mode and which
// live venues are actually wired.
type RouterStatus struct {
	Mode               string
	PaperEnabled       bool
	HyperliquidEnabled bool
	DriftEnabled       bool
	RiskStatus         risk.Status
}

// Status reports the router's configuration and the guardrail engine's
// current throttle state.
func (r *ExecutionRouter) Status() RouterStatus {
	hlEnabled := false
	if hl, ok := r.hyperliquid.(*HyperliquidExecutor); ok && hl != nil {
		hlEnabled = hl.enabled
	}
	driftEnabled := false
	if dr, ok := r.drift.(*DriftExecutor); ok && dr != nil {
		driftEnabled = dr.enabled
	}
	return RouterStatus{
		Mode: r.mode, PaperEnabled: r.paper != nil,
		HyperliquidEnabled: hlEnabled, DriftEnabled: driftEnabled,
		RiskStatus: r.riskEngine.GetStatus(r.riskState),
	}
}
