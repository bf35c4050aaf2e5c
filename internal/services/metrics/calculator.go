// Package metrics derives annualized risk ratios from historical price
// series.
package metrics

import (
	"math"

	"github.com/hazemk/borsa/internal/models"
)

const (
	// TradingPeriodsPerYear is the annualization factor for daily
	// returns.
	TradingPeriodsPerYear = 252

	// NoDownsideSentinel signals "no observed downside risk" for the
	// Sortino ratio, distinct from nil ("insufficient data").
	NoDownsideSentinel = 999.0

	// DefaultRiskFreeRate reflects the Egyptian T-bill environment.
	DefaultRiskFreeRate = 0.10
)

// Calculator computes risk metrics against a configured annual
// risk-free rate.
type Calculator struct {
	riskFreeRate float64
}

// NewCalculator creates a Calculator. A negative rate falls back to the
// default; zero is a valid configured rate.
func NewCalculator(riskFreeRate float64) *Calculator {
	if riskFreeRate < 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	return &Calculator{riskFreeRate: riskFreeRate}
}

// SimpleReturns computes period-over-period simple returns from an
// ascending chronological price series. Zero or negative prices are
// skipped as denominator guards.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	return returns
}

// Compute derives Sharpe and Sortino ratios from an ascending price
// series. Both are nil when fewer than two data points are available or
// when the series has no volatility at all.
func (c *Calculator) Compute(series *models.HistoricalSeries) *models.RiskMetrics {
	out := &models.RiskMetrics{}
	if series == nil {
		return out
	}

	returns := SimpleReturns(series.Closes)
	if len(returns) == 0 {
		return out
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	// No volatility to normalize against: both ratios undefined.
	if stdDev == 0 {
		return out
	}

	annualizedMean := mean * TradingPeriodsPerYear
	annualizedStdDev := stdDev * math.Sqrt(TradingPeriodsPerYear)
	excess := annualizedMean - c.riskFreeRate

	out.SharpeRatio = models.Float64Ptr(excess / annualizedStdDev)

	// Downside deviation: sum of squared negative returns over the
	// TOTAL return count, then annualized.
	downsideSum := 0.0
	negatives := 0
	for _, r := range returns {
		if r < 0 {
			downsideSum += r * r
			negatives++
		}
	}

	if negatives == 0 {
		out.SortinoRatio = models.Float64Ptr(NoDownsideSentinel)
		return out
	}

	downsideDev := math.Sqrt(downsideSum/float64(len(returns))) * math.Sqrt(TradingPeriodsPerYear)
	out.SortinoRatio = models.Float64Ptr(excess / downsideDev)
	return out
}

// RiskFreeRate returns the configured annual risk-free rate.
func (c *Calculator) RiskFreeRate() float64 {
	return c.riskFreeRate
}
