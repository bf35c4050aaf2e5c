package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hazemk/borsa/internal/models"
)

// AnalyzePortfolio values every holding through the price chain and
// produces a health assessment, LLM-written when possible.
func (s *Service) AnalyzePortfolio(ctx context.Context, holdings []models.Holding) (*models.PortfolioAnalysis, error) {
	if len(holdings) == 0 {
		return nil, errors.New("portfolio has no holdings")
	}

	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	quotes := s.market.GetPrices(ctx, symbols)

	totalValue := 0.0
	assessments := make([]models.HoldingAssessment, len(holdings))
	for i, h := range holdings {
		a := models.HoldingAssessment{Symbol: h.Symbol, Verdict: "hold"}
		if quotes[i].HasPrice() {
			price := *quotes[i].Price
			value := price * h.Quantity
			totalValue += value
			a.CurrentPrice = models.Float64Ptr(price)
			a.MarketValue = models.Float64Ptr(round2(value))
			if h.AvgCost > 0 {
				a.GainLossPct = models.Float64Ptr(round2((price - h.AvgCost) / h.AvgCost * 100))
			}
		} else {
			a.Comment = quotes[i].Error
		}
		assessments[i] = a
	}
	for i := range assessments {
		if assessments[i].MarketValue != nil && totalValue > 0 {
			assessments[i].WeightPct = models.Float64Ptr(round2(*assessments[i].MarketValue / totalValue * 100))
		}
	}

	result := &models.PortfolioAnalysis{
		TotalValue:  models.Float64Ptr(round2(totalValue)),
		Holdings:    assessments,
		GeneratedAt: s.now(),
	}

	if err := s.narratePortfolio(ctx, result, totalValue); err != nil {
		s.logger.Warn().Err(err).Msg("LLM portfolio assessment failed, using formula")
		score, diversification, summary := formulaPortfolio(assessments, totalValue)
		result.HealthScore = score
		result.Diversification = diversification
		result.Summary = summary
		result.Source = "formula"
	} else {
		result.Source = "llm"
	}
	return result, nil
}

func (s *Service) narratePortfolio(ctx context.Context, result *models.PortfolioAnalysis, totalValue float64) error {
	if s.llm == nil {
		return errors.New("LLM not configured")
	}

	var resp struct {
		HealthScore     int    `json:"healthScore"`
		Diversification string `json:"diversification"`
		Summary         string `json:"summary"`
		Verdicts        []struct {
			Symbol  string `json:"symbol"`
			Verdict string `json:"verdict"`
			Comment string `json:"comment"`
		} `json:"verdicts"`
	}
	if err := s.llm.GenerateJSON(ctx, buildPortfolioPrompt(result.Holdings, totalValue), &resp); err != nil {
		return err
	}
	if resp.Summary == "" || resp.HealthScore < 0 || resp.HealthScore > 100 {
		return errors.New("model returned invalid portfolio shape")
	}

	result.HealthScore = resp.HealthScore
	result.Diversification = resp.Diversification
	result.Summary = resp.Summary
	for _, v := range resp.Verdicts {
		for i := range result.Holdings {
			if strings.EqualFold(result.Holdings[i].Symbol, v.Symbol) {
				result.Holdings[i].Verdict = v.Verdict
				if v.Comment != "" {
					result.Holdings[i].Comment = v.Comment
				}
			}
		}
	}
	return nil
}

// DeployCapital suggests how to invest fresh capital given the current
// holdings. Every outcome is appended to the recommendation history.
func (s *Service) DeployCapital(ctx context.Context, holdings []models.Holding, amount float64) (*models.DeployCapitalResult, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if len(holdings) == 0 {
		return nil, errors.New("portfolio has no holdings")
	}

	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	quotes := s.market.GetPrices(ctx, symbols)

	result := &models.DeployCapitalResult{
		Amount:      amount,
		GeneratedAt: s.now(),
	}

	if err := s.narrateDeploy(ctx, result, holdings, quotes, amount); err != nil {
		s.logger.Warn().Err(err).Msg("LLM capital allocation failed, using formula")
		result.Allocations, result.Summary = formulaAllocations(holdings, quotes, amount)
		result.Source = "formula"
	} else {
		result.Source = "llm"
	}

	if s.history != nil {
		rec := models.Recommendation{
			CreatedAt: result.GeneratedAt,
			Amount:    amount,
			Result:    *result,
		}
		if _, err := s.history.Append(rec); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist recommendation")
		}
	}
	return result, nil
}

func (s *Service) narrateDeploy(ctx context.Context, result *models.DeployCapitalResult, holdings []models.Holding, quotes []*models.PriceQuote, amount float64) error {
	if s.llm == nil {
		return errors.New("LLM not configured")
	}

	var resp struct {
		Allocations []models.Allocation `json:"allocations"`
		Summary     string              `json:"summary"`
	}
	if err := s.llm.GenerateJSON(ctx, buildDeployCapitalPrompt(holdings, quotes, amount), &resp); err != nil {
		return err
	}
	if len(resp.Allocations) == 0 || resp.Summary == "" {
		return errors.New("model returned invalid allocation shape")
	}
	result.Allocations = resp.Allocations
	result.Summary = resp.Summary
	return nil
}

// CompareStocks gathers full data for 2-3 symbols concurrently and picks
// a winner. Holdings are accepted for context but comparison is driven
// by market data.
func (s *Service) CompareStocks(ctx context.Context, symbols []string, holdings []models.Holding) (*models.CompareStocksResult, error) {
	if len(symbols) < 2 || len(symbols) > 3 {
		return nil, fmt.Errorf("comparison requires 2 or 3 symbols, got %d", len(symbols))
	}

	stocks := make([]models.StockComparison, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			comparison := models.StockComparison{
				Symbol:       symbol,
				Quote:        s.market.GetPrice(ctx, symbol),
				Fundamentals: s.market.GetFundamentals(ctx, symbol),
				Metrics:      &models.RiskMetrics{},
			}
			if series, err := s.market.GetHistory(ctx, symbol, 0); err == nil {
				comparison.Metrics = s.calc.Compute(series)
			}
			stocks[i] = comparison
		}(i, symbol)
	}
	wg.Wait()

	result := &models.CompareStocksResult{
		Stocks:      stocks,
		GeneratedAt: s.now(),
	}

	if err := s.narrateCompare(ctx, result); err != nil {
		s.logger.Warn().Err(err).Msg("LLM comparison failed, using formula")
		result.Winner, result.Summary = formulaCompare(stocks)
		result.Source = "formula"
	} else {
		result.Source = "llm"
	}
	return result, nil
}

func (s *Service) narrateCompare(ctx context.Context, result *models.CompareStocksResult) error {
	if s.llm == nil {
		return errors.New("LLM not configured")
	}

	var resp struct {
		Winner  string `json:"winner"`
		Summary string `json:"summary"`
	}
	if err := s.llm.GenerateJSON(ctx, buildComparePrompt(result.Stocks), &resp); err != nil {
		return err
	}
	valid := false
	for _, c := range result.Stocks {
		if strings.EqualFold(c.Symbol, resp.Winner) {
			resp.Winner = c.Symbol
			valid = true
		}
	}
	if !valid || resp.Summary == "" {
		return errors.New("model returned invalid comparison shape")
	}
	result.Winner = resp.Winner
	result.Summary = resp.Summary
	return nil
}

// ExtractTransactions reads buy/sell rows out of a brokerage statement
// image. There is no deterministic fallback for vision.
func (s *Service) ExtractTransactions(ctx context.Context, imageBase64 string) ([]models.Transaction, error) {
	if s.llm == nil {
		return nil, errors.New("LLM not configured")
	}
	if strings.TrimSpace(imageBase64) == "" {
		return nil, errors.New("image payload is empty")
	}

	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	if err := s.llm.ExtractFromImage(ctx, imageBase64, extractTransactionsPrompt, &resp); err != nil {
		return nil, err
	}
	if resp.Transactions == nil {
		resp.Transactions = []models.Transaction{}
	}
	return resp.Transactions, nil
}
