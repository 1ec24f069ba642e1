package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/riskdesk/internal/agents"
	"github.com/sawpanic/riskdesk/internal/applog"
	"github.com/sawpanic/riskdesk/internal/config"
	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/execution"
	"github.com/sawpanic/riskdesk/internal/ingest"
	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/replay"
	"github.com/sawpanic/riskdesk/internal/risk"
	"github.com/sawpanic/riskdesk/internal/rules"
	"github.com/sawpanic/riskdesk/internal/sandbox"
	"github.com/sawpanic/riskdesk/internal/store"
)

// btcMarket is the symbol the periodic rule-evaluation job routes against.
// It matches the Kraken ingest job's raw pair so PriceAuthority's cache key
// lines up without going through the CoinGecko/Pyth symbol formats, which
// use a different separator convention than the cache key normalizer
// expects.
const btcMarket = "XBTUSD"

const (
	appName = "riskdesk"
	version = "v0.1.0"
)

func main() {
	cfg := config.Load(nil)
	logger := applog.New(cfg.LogLevel)
	log.Logger = logger

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Real-time tariff/crypto risk desk: signal engine + execution gateway.",
		Version: version,
		Long: `riskdesk ingests tariff, macro, and venue microstructure signals,
evaluates them against a fixed rule table and a set of advisory agents, and
routes approved actions through a paper or live execution gateway.`,
	}

	rootCmd.AddCommand(
		newServeCmd(cfg),
		newSandboxCmd(),
		newReplayCmd(),
		newStressCmd(),
		newConfigCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newServeCmd wires the full desk: event bus, snapshot store, ingest
// scheduler, rules engine, guardrails, and the execution gateway (paper,
// or live when cfg.ExecutionMode is "live"), then blocks until interrupted.
func newServeCmd(cfg config.Config) *cobra.Command {
	var thresholdsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the desk continuously: ingest, evaluate rules, execute.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bus := eventbus.New(nil, log.Logger)
			snaps := store.NewTTLMap(10000)

			thresholds, err := rules.LoadThresholds(thresholdsPath)
			if err != nil {
				return fmt.Errorf("load thresholds: %w", err)
			}
			engine := rules.NewEngine(thresholds)
			guardrails := risk.NewEngine(risk.DefaultGuardrailConfig())
			executor := execution.NewPaperExecutor(bus)
			riskState := &models.RiskState{}

			priceAuthority := execution.NewPriceAuthority(snaps)
			priceValidator := execution.NewPriceValidator(snaps, bus)
			execAgent := agents.NewExecutionAgent()

			venueBreakers := execution.NewRouter(5.0)
			liveCfg := execution.LiveExecConfig{
				HyperliquidAPIKey: cfg.HyperliquidAPIKey,
				DriftRPCURL:       cfg.DriftRPCURL,
				SolanaPrivateKey:  cfg.SolanaPrivateKey,
				JupiterAPIURL:     cfg.JupiterAPIURL,
			}
			hyperliquidExec := execution.NewHyperliquidExecutor(liveCfg, venueBreakers.Venue("hyperliquid"), bus)
			driftExec := execution.NewDriftExecutor(liveCfg, venueBreakers.Venue("drift"), bus)

			router := execution.NewExecutionRouter(
				cfg.ExecutionMode, bus, priceAuthority, priceValidator,
				guardrails, riskState, execAgent, executor,
				hyperliquidExec, driftExec,
				cfg.PriceFreshnessThresholdS, cfg.PriceIntegrityBlockLive,
			)

			scheduler := ingest.NewScheduler(log.Logger)
			scheduler.AddTickerJob(30*time.Second, ingest.NewKrakenJob(btcMarket, nil, snaps))
			scheduler.AddTickerJob(60*time.Second, ingest.NewCoinGeckoJob("bitcoin", nil, snaps))
			scheduler.AddTickerJob(30*time.Second, ingest.NewPythJob("BTC/USD", nil, snaps))
			if err := scheduler.AddCronJob("0 */6 * * *", &ingest.WITSJob{
				Reporter: "USA", Partners: cfg.WITSCountries, Products: cfg.WITSProducts, Snaps: snaps, Bus: bus,
			}); err != nil {
				return fmt.Errorf("schedule wits job: %w", err)
			}
			if err := scheduler.AddCronJob("*/5 * * * *", &ingest.GDELTJob{
				Keywords: cfg.GDELTKeywords, Snaps: snaps, Bus: bus,
			}); err != nil {
				return fmt.Errorf("schedule gdelt job: %w", err)
			}
			scheduler.AddTickerJob(30*time.Second, &ruleEvalJob{engine: engine, snaps: snaps, priceAuthority: priceAuthority, router: router, market: btcMarket})

			bus.Subscribe(eventbus.AgentSignal, func(ctx context.Context, evt models.Event) {
				log.Info().Interface("payload", evt.Payload).Msg("agent signal received")
			})

			log.Info().
				Str("execution_mode", cfg.ExecutionMode).
				Bool("throttled", riskState.ThrottleActive).
				Interface("router_status", router.Status()).
				Msg("riskdesk serve starting")

			scheduler.Start(ctx)
			defer scheduler.Stop()

			<-ctx.Done()
			log.Info().Msg("riskdesk serve shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&thresholdsPath, "thresholds", "", "path to a YAML rule-threshold overlay")
	return cmd
}

// ruleEvalJob is the live tie between the rules engine and the execution
// gateway: on every tick it builds a Context from whatever signals have
// actually landed in the snapshot store, evaluates the rule table, and
// routes every fired action (other than a "none" side) through the
// execution router.
type ruleEvalJob struct {
	engine         *rules.Engine
	snaps          store.SnapshotStore
	priceAuthority *execution.PriceAuthority
	router         *execution.ExecutionRouter
	market         string
}

func (j *ruleEvalJob) Name() string { return "rule_eval" }

func (j *ruleEvalJob) Run(ctx context.Context) error {
	ruleCtx := buildRuleContext(j.snaps, j.priceAuthority, j.market)
	for _, action := range j.engine.Evaluate(ruleCtx) {
		if action.Side == "none" {
			continue
		}
		result := j.router.RouteOrder(ctx, action.Venue, action.Market, action.Side, action.Size, 0, agents.MarketSnapshot{})
		log.Info().
			Str("rule", action.RuleName).Str("action", action.ActionType).
			Str("status", result.Status).Strs("reasons", result.Reasons).
			Msg("rule action routed through execution gateway")
	}
	return nil
}

// buildRuleContext assembles the rules engine's Context from the latest
// resolved price and the most recent GDELT shock reading. Tariff-index
// rate-of-change has no live producer wired into serve yet (WITS
// publishes raw components, not the calculated index) so it defaults to
// zero; the sandbox and replay commands exercise that rule against
// synthetic/historical contexts instead.
func buildRuleContext(snaps store.SnapshotStore, pa *execution.PriceAuthority, market string) rules.Context {
	price := pa.GetPrice(market)
	venue := price.Source
	if venue == "" || venue == "none" {
		venue = "kraken"
	}

	var shockScore float64
	if v, ok := snaps.Get("gdelt:latest"); ok {
		if m, ok := v.(map[string]interface{}); ok {
			if s, ok := m["shock_score"].(float64); ok {
				shockScore = s
			}
		}
	}

	return rules.Context{
		Venue: venue, Market: market, SuggestedSize: 0.01,
		VolRegime: "normal", ShockScore: shockScore,
	}
}

// newSandboxCmd runs an A/B rule-threshold comparison and prints the
// result as JSON — a what-if tool, never a live trading path.
func newSandboxCmd() *cobra.Command {
	var currentPrice, priceChangePct, volatility, shockScore, tariffRoc float64
	var volRegime string

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Compare two rule-threshold configurations against one market snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := sandbox.MarketState{
				CurrentPrice: currentPrice, PriceChangePct: priceChangePct,
				Volatility: volatility, ShockScore: shockScore,
				TariffRateOfChange: tariffRoc, VolRegime: volRegime,
			}
			result := sandbox.Run(sandbox.DefaultConfigA(), sandbox.DefaultConfigB(), state)
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&currentPrice, "price", 50000, "current price used for sizing")
	cmd.Flags().Float64Var(&priceChangePct, "price-change-pct", 0, "simulated price move, percent")
	cmd.Flags().Float64Var(&volatility, "volatility", 0.03, "annualized volatility for the Monte Carlo leg")
	cmd.Flags().Float64Var(&shockScore, "shock-score", 0, "tariff/news shock score")
	cmd.Flags().Float64Var(&tariffRoc, "tariff-roc", 0, "tariff index rate of change")
	cmd.Flags().StringVar(&volRegime, "vol-regime", "normal", "normal|high|extreme")
	return cmd
}

// newReplayCmd replays a recorded event history (JSON array of
// models.Event) through the current rule table and reports fidelity
// against what was originally decided.
func newReplayCmd() *cobra.Command {
	var eventsPath, thresholdsPath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded events through the current rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(eventsPath)
			if err != nil {
				return fmt.Errorf("read events file: %w", err)
			}
			var events []models.Event
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("parse events file: %w", err)
			}

			thresholds, err := rules.LoadThresholds(thresholdsPath)
			if err != nil {
				return fmt.Errorf("load thresholds: %w", err)
			}
			engine := rules.NewEngine(thresholds)

			result := replay.Run(engine, events, replay.Overrides{}, nil, nil)
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "path to a JSON array of recorded events (required)")
	cmd.Flags().StringVar(&thresholdsPath, "thresholds", "", "path to a YAML rule-threshold overlay")
	cmd.MarkFlagRequired("events")
	return cmd
}

// newStressCmd runs one of the desk's fixed stress scenarios against a
// single synthetic position.
func newStressCmd() *cobra.Command {
	var scenario, venue, market, side string
	var size, entryPrice float64

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a fixed stress scenario (tariff_shock|sol_crash|vol_spike) against a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			signedSize := size
			if side == "sell" {
				signedSize = -size
			}
			positions := []models.Position{{
				Venue: venue, Market: market, SignedSize: signedSize, EntryPrice: entryPrice,
			}}
			runner := risk.NewRunner()
			result := runner.RunScenario(scenario, positions, risk.StressParams{})
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "tariff_shock", "tariff_shock|sol_crash|vol_spike")
	cmd.Flags().StringVar(&venue, "venue", "hyperliquid", "venue")
	cmd.Flags().StringVar(&market, "market", "BTC-PERP", "market")
	cmd.Flags().StringVar(&side, "side", "buy", "buy|sell")
	cmd.Flags().Float64Var(&size, "size", 1.0, "position size")
	cmd.Flags().Float64Var(&entryPrice, "entry-price", 50000, "entry price")
	return cmd
}

// newConfigCmd prints the effective, secret-free configuration.
func newConfigCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, cfg.Summary())
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
