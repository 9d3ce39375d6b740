package optimization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/allocator/internal/cache"
)

// tradingDaysPerYear is the annualization factor for daily log returns.
const tradingDaysPerYear = 252

// PriceSource provides historical daily closing prices in ascending date order.
type PriceSource interface {
	DailyCloses(symbol string, limit int) ([]float64, error)
}

// RiskModelBuilder estimates expected returns and covariance from price history.
type RiskModelBuilder struct {
	prices       PriceSource
	cache        *cache.Cache
	lookbackDays int
	log          zerolog.Logger
}

// NewRiskModelBuilder creates a risk model builder
func NewRiskModelBuilder(prices PriceSource, lookbackDays int, log zerolog.Logger) *RiskModelBuilder {
	return &RiskModelBuilder{
		prices:       prices,
		lookbackDays: lookbackDays,
		log:          log.With().Str("component", "risk_model").Logger(),
	}
}

// SetCache enables caching of computed risk models.
func (b *RiskModelBuilder) SetCache(c *cache.Cache) {
	b.cache = c
}

// cachedRiskModel is the msgpack-friendly form of a RiskModel.
type cachedRiskModel struct {
	Symbols         []string  `msgpack:"symbols"`
	ExpectedReturns []float64 `msgpack:"expected_returns"`
	CovData         []float64 `msgpack:"cov_data"` // Row-major n×n
}

// Build estimates a RiskModel for the given symbols.
//
// Returns ErrDataInsufficient when any symbol has fewer than two prices or
// the series cannot be aligned, and ErrNumericalInstability when the inputs
// produce NaN or Inf.
func (b *RiskModelBuilder) Build(symbols []string) (*RiskModel, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrDataInsufficient)
	}

	cacheKey := riskModelCacheKey(symbols)
	if b.cache != nil {
		var cached cachedRiskModel
		if b.cache.Get("risk_model", cacheKey, &cached) {
			if model, ok := riskModelFromCache(cached, symbols); ok {
				b.log.Debug().Int("num_symbols", len(symbols)).Msg("Risk model cache hit")
				return model, nil
			}
		}
	}

	// Compute per-symbol log returns. Series must be index-aligned; a
	// length mismatch is rejected, not silently trimmed.
	returns := make([][]float64, len(symbols))
	for i, sym := range symbols {
		closes, err := b.prices.DailyCloses(sym, b.lookbackDays)
		if err != nil {
			return nil, fmt.Errorf("failed to load prices for %s: %w", sym, err)
		}
		if len(closes) < 2 {
			return nil, fmt.Errorf("%w: %s has %d prices, need at least 2", ErrDataInsufficient, sym, len(closes))
		}

		r, err := logReturns(closes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sym, err)
		}
		returns[i] = r
		if len(r) != len(returns[0]) {
			return nil, fmt.Errorf("%w: %s has %d returns, expected %d (misaligned series)",
				ErrDataInsufficient, sym, len(r), len(returns[0]))
		}
	}
	numReturns := len(returns[0])

	n := len(symbols)
	expected := make([]float64, n)
	for i := range returns {
		expected[i] = stat.Mean(returns[i], nil) * tradingDaysPerYear
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, populationCovariance(returns[i], returns[j]))
		}
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(expected[i]) || math.IsInf(expected[i], 0) {
			return nil, fmt.Errorf("%w: expected return for %s", ErrNumericalInstability, symbols[i])
		}
		for j := i; j < n; j++ {
			v := cov.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: covariance (%s, %s)", ErrNumericalInstability, symbols[i], symbols[j])
			}
		}
	}

	model := &RiskModel{
		Symbols:         append([]string(nil), symbols...),
		ExpectedReturns: expected,
		Cov:             cov,
	}

	if b.cache != nil {
		if err := b.cache.Set("risk_model", cacheKey, riskModelToCache(model), cache.TTLOptimizer); err != nil {
			b.log.Warn().Err(err).Msg("Failed to cache risk model")
		}
	}

	b.log.Debug().
		Int("num_symbols", n).
		Int("num_returns", numReturns).
		Msg("Built risk model")

	return model, nil
}

// logReturns computes ln(p_t / p_{t-1}) over an ascending price series.
func logReturns(closes []float64) ([]float64, error) {
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i] <= 0 || closes[i-1] <= 0 {
			return nil, fmt.Errorf("%w: non-positive price", ErrNumericalInstability)
		}
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out, nil
}

// populationCovariance computes the N-normalized covariance of two
// equal-length series. stat.Covariance is (N-1)-normalized, so the inner
// product is computed directly.
func populationCovariance(x, y []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	meanX := stat.Mean(x, nil)
	meanY := stat.Mean(y, nil)

	var sum float64
	for i := 0; i < n; i++ {
		sum += (x[i] - meanX) * (y[i] - meanY)
	}
	return sum / float64(n)
}

// riskModelCacheKey derives a stable key from the symbol set.
func riskModelCacheKey(symbols []string) string {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])[:16]
}

func riskModelToCache(m *RiskModel) cachedRiskModel {
	n := len(m.Symbols)
	data := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data = append(data, m.Cov.At(i, j))
		}
	}
	return cachedRiskModel{
		Symbols:         m.Symbols,
		ExpectedReturns: m.ExpectedReturns,
		CovData:         data,
	}
}

// riskModelFromCache rebuilds a RiskModel, rejecting entries whose symbol
// order no longer matches the request.
func riskModelFromCache(c cachedRiskModel, symbols []string) (*RiskModel, bool) {
	n := len(symbols)
	if len(c.Symbols) != n || len(c.ExpectedReturns) != n || len(c.CovData) != n*n {
		return nil, false
	}
	for i := range symbols {
		if c.Symbols[i] != symbols[i] {
			return nil, false
		}
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, c.CovData[i*n+j])
		}
	}
	return &RiskModel{
		Symbols:         c.Symbols,
		ExpectedReturns: c.ExpectedReturns,
		Cov:             cov,
	}, true
}
