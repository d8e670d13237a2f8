package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"marketbrief/internal/alphavantage"
	"marketbrief/internal/analysisjob"
	"marketbrief/internal/config"
	"marketbrief/internal/coordinator"
	"marketbrief/internal/fmp"
	"marketbrief/internal/metric"
	"marketbrief/internal/retrieval"
	"marketbrief/internal/risks"
	"marketbrief/internal/validate"
	"marketbrief/internal/yquote"
)

// Conservative constants returned when every source and the estimator
// are unavailable. Deliberately unremarkable values for their metrics.
const (
	fallbackIndexEPS = 240.0
	fallbackYield    = 4.0
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// The quote client doubles as the first EPS source and the
	// estimator's auxiliary input provider.
	quote := yquote.NewClient(cfg.IndexSymbol, cfg.QuoteBaseURL)

	// The current index level serves as the reference for EPS sanity
	// checks. Missing reference just skips the ratio check.
	var indexLevel float64
	if level, _, err := quote.Snapshot(ctx); err == nil {
		indexLevel = level
	}

	epsEngine := retrieval.New(retrieval.Config{
		Name: "sp500_ttm_eps",
		Sources: []metric.Source{
			yquote.NewEPSSource(quote),
			fmp.NewEPSSource(cfg.FMPAPIKey, cfg.EarningsSymbol, cfg.FMPBaseURL),
			alphavantage.NewEPSSource(cfg.AlphavantageAPIKey, cfg.EarningsSymbol, cfg.AlphavantageBaseURL),
		},
		Bounds:    cfg.EPSBounds(),
		Reference: indexLevel,
		Aux:       quote.Snapshot,
		Fallback:  fallbackIndexEPS,
	})

	yieldEngine := retrieval.New(retrieval.Config{
		Name: fmt.Sprintf("treasury_yield_%s", cfg.TreasuryMaturity),
		Sources: []metric.Source{
			alphavantage.NewYieldSource(cfg.AlphavantageAPIKey, cfg.TreasuryMaturity, cfg.AlphavantageBaseURL),
		},
		Bounds:   validate.YieldBounds(),
		Fallback: fallbackYield,
	})

	coord := coordinator.New([]coordinator.Retriever{epsEngine, yieldEngine})

	// Add timeout to prevent hanging indefinitely
	fetchCtx, fetchCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer fetchCancel()

	fmt.Println("Retrieving market metrics...")
	fmt.Println("================================================")
	entries, err := coord.Run(fetchCtx)
	if err != nil {
		log.Fatalf("Coordinator failed: %v", err)
	}

	for _, entry := range entries {
		printResult(entry.Key, entry.Result)
	}

	fmt.Println("================================================")
	fmt.Println("Refreshing geopolitical risk analysis...")

	client := analysisjob.NewClient(cfg.AnalysisBaseURL, cfg.AnalysisAPIKey, cfg.Region)
	orch := analysisjob.New(client, cfg.PollInterval, cfg.MaxPollAttempts)

	outcome, err := orch.Run(ctx)
	switch {
	case err != nil:
		fmt.Printf("Analysis failed after %d polls: %v\n", outcome.Attempts, err)
	case outcome.TimedOut:
		fmt.Printf("Analysis still running after %d polls (%s); result may arrive out-of-band\n",
			outcome.Attempts, outcome.Elapsed.Round(time.Second))
	default:
		for _, risk := range risks.Parse(outcome.Data) {
			fmt.Printf("[%s] %s (%s: %v)\n", risk.Impact, risk.Title, risk.Region, risk.Markets)
		}
	}

	fmt.Println("================================================")
	fmt.Println("Done!")
}

func printResult(key string, res metric.Result) {
	suffix := ""
	if res.IsEstimate {
		suffix = " (estimate)"
	}
	if res.Adjustment != "" {
		suffix += fmt.Sprintf(" [%s]", res.Adjustment)
	}
	fmt.Printf("%s: %.2f via %s%s\n", key, res.Value, res.SourceName, suffix)
}
