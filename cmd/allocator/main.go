// Command allocator computes constrained portfolio weights from stored
// price history and prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/allocator/internal/cache"
	"github.com/aristath/allocator/internal/config"
	"github.com/aristath/allocator/internal/database"
	"github.com/aristath/allocator/internal/history"
	"github.com/aristath/allocator/internal/optimization"
	"github.com/aristath/allocator/pkg/logger"
)

func main() {
	var (
		symbolsFlag = flag.String("symbols", "", "Comma-separated symbols to allocate across (required)")
		cvarBudget  = flag.Float64("cvar-budget", 0.25, "Maximum portfolio CVaR(95%), annualized")
		volTarget   = flag.Float64("vol-target", 0.15, "Target annualized volatility")
		maxWeight   = flag.Float64("max-weight", 0, "Per-asset weight cap (0 = default)")
		minWeight   = flag.Float64("min-weight", 0, "Per-asset weight floor (0 = default)")
		pretty      = flag.Bool("pretty", false, "Human-readable log output")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: *pretty})

	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "usage: allocator -symbols SYM1,SYM2,... [-cvar-budget N] [-vol-target N]")
		os.Exit(2)
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	store := history.NewStore(historyDB.Conn(), log)
	if err := store.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate history database")
	}

	calcCache := cache.New(cacheDB.Conn(), log)
	if err := calcCache.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate cache database")
	}

	riskBuilder := optimization.NewRiskModelBuilder(store, cfg.LookbackDays, log)
	riskBuilder.SetCache(calcCache)
	optimizer := optimization.NewGradientOptimizer(cfg.Iterations, cfg.LearningRate, log)
	service := optimization.NewService(riskBuilder, optimizer, log)

	result, err := service.Optimize(optimization.Constraints{
		Symbols:    symbols,
		CVaRBudget: *cvarBudget,
		VolTarget:  *volTarget,
		MaxWeight:  *maxWeight,
		MinWeight:  *minWeight,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Optimization failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
