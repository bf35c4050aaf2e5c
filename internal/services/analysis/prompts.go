package analysis

import (
	"fmt"
	"strings"

	"github.com/hazemk/borsa/internal/models"
)

func buildAnalysisPrompt(symbol, name string, quote *models.PriceQuote, fundamentals *models.FundamentalsSnapshot, riskMetrics *models.RiskMetrics) string {
	var b strings.Builder
	b.WriteString("You are an equity analyst covering the Egyptian Exchange (EGX).\n")
	fmt.Fprintf(&b, "Analyze %s (%s) using the data below. All prices are in EGP.\n\n", name, symbol)

	fmt.Fprintf(&b, "Current price: %s\n", fmtPtr(quote.Price))
	fmt.Fprintf(&b, "Change: %s (%s%%)\n", fmtPtr(quote.Change), fmtPtr(quote.ChangePercent))
	fmt.Fprintf(&b, "Previous close: %s\n", fmtPtr(quote.PreviousClose))
	if fundamentals != nil {
		fmt.Fprintf(&b, "EPS: %s\n", fmtPtr(fundamentals.EPS))
		fmt.Fprintf(&b, "P/E ratio: %s\n", fmtPtr(fundamentals.PERatio))
		fmt.Fprintf(&b, "Book value per share: %s\n", fmtPtr(fundamentals.BookValue))
		fmt.Fprintf(&b, "Dividend yield: %s\n", fmtPtr(fundamentals.DividendYield))
		if fundamentals.Recommendation != nil {
			fmt.Fprintf(&b, "Analyst consensus: %s\n", *fundamentals.Recommendation)
		}
	}
	if riskMetrics != nil {
		fmt.Fprintf(&b, "Sharpe ratio (annualized): %s\n", fmtPtr(riskMetrics.SharpeRatio))
		fmt.Fprintf(&b, "Sortino ratio (annualized): %s\n", fmtPtr(riskMetrics.SortinoRatio))
	}

	b.WriteString(`
Respond with JSON only, exactly this shape:
{
  "narrative": "3-5 sentence assessment of valuation, quality, and risk",
  "zones": {
    "strongBuy":  {"min": 0, "max": 0},
    "buy":        {"min": 0, "max": 0},
    "hold":       {"min": 0, "max": 0},
    "sell":       {"min": 0, "max": 0},
    "strongSell": {"min": 0, "max": 0}
  }
}
The five zones must form one ascending ladder with no gaps or overlaps:
each zone's min must equal the previous zone's max. Center the hold zone
around your fair value estimate.`)
	return b.String()
}

func buildPortfolioPrompt(assessments []models.HoldingAssessment, totalValue float64) string {
	var b strings.Builder
	b.WriteString("You are a portfolio advisor for Egyptian Exchange (EGX) equities.\n")
	fmt.Fprintf(&b, "Assess the health of this portfolio (total value %.2f EGP):\n\n", totalValue)
	for _, a := range assessments {
		fmt.Fprintf(&b, "- %s: value %s EGP, weight %s%%, gain/loss %s%%\n",
			a.Symbol, fmtPtr(a.MarketValue), fmtPtr(a.WeightPct), fmtPtr(a.GainLossPct))
	}
	b.WriteString(`
Respond with JSON only:
{
  "healthScore": 0,
  "diversification": "poor|fair|good|excellent",
  "summary": "3-5 sentence overall assessment",
  "verdicts": [{"symbol": "", "verdict": "hold|trim|add|exit", "comment": ""}]
}
healthScore is an integer 0-100.`)
	return b.String()
}

func buildDeployCapitalPrompt(holdings []models.Holding, quotes []*models.PriceQuote, amount float64) string {
	var b strings.Builder
	b.WriteString("You are a portfolio advisor for Egyptian Exchange (EGX) equities.\n")
	fmt.Fprintf(&b, "The investor wants to deploy %.2f EGP of new capital.\n", amount)
	b.WriteString("Current holdings:\n")
	for i, h := range holdings {
		price := "unknown"
		if i < len(quotes) && quotes[i].HasPrice() {
			price = fmt.Sprintf("%.2f", *quotes[i].Price)
		}
		fmt.Fprintf(&b, "- %s: %.2f shares at avg cost %.2f, current price %s\n",
			h.Symbol, h.Quantity, h.AvgCost, price)
	}
	b.WriteString(`
Suggest how to allocate the new capital across at most 4 positions,
favoring underweight quality names. Amounts must sum to the deployed
total. Respond with JSON only:
{
  "allocations": [{"symbol": "", "amount": 0, "rationale": ""}],
  "summary": "2-4 sentence rationale"
}`)
	return b.String()
}

func buildComparePrompt(stocks []models.StockComparison) string {
	var b strings.Builder
	b.WriteString("You are an equity analyst covering the Egyptian Exchange (EGX).\n")
	b.WriteString("Compare these stocks and pick the single best buy today:\n\n")
	for _, s := range stocks {
		fmt.Fprintf(&b, "%s: price %s, P/E %s, EPS %s, dividend yield %s, Sharpe %s, Sortino %s\n",
			s.Symbol,
			fmtPtr(s.Quote.Price),
			fmtPtr(s.Fundamentals.PERatio),
			fmtPtr(s.Fundamentals.EPS),
			fmtPtr(s.Fundamentals.DividendYield),
			fmtPtr(s.Metrics.SharpeRatio),
			fmtPtr(s.Metrics.SortinoRatio))
	}
	b.WriteString(`
Respond with JSON only:
{
  "winner": "SYMBOL",
  "summary": "3-5 sentence comparison ending with the pick and why"
}
winner must be one of the symbols listed above.`)
	return b.String()
}

const extractTransactionsPrompt = `This image is a brokerage statement or
trade confirmation from an Egyptian Exchange (EGX) broker. Extract every
buy and sell transaction you can read. Respond with JSON only:
{
  "transactions": [
    {"symbol": "", "type": "buy|sell", "quantity": 0, "price": 0, "date": "YYYY-MM-DD"}
  ]
}
Use the EGX ticker symbol (e.g. COMI, HRHO). Omit the date field when it
is not legible. Return an empty transactions array if none are visible.`

func fmtPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
