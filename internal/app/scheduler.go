package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
)

// warmScheduler drives the periodic cache warm job.
type warmScheduler struct {
	cron *cron.Cron
}

// StartWarmScheduler starts the cron job that pre-warms the price and
// fundamentals cache for the configured symbols. A missing schedule or
// empty symbol list disables the job.
func (a *App) StartWarmScheduler() {
	schedule := a.Config.Server.WarmSchedule
	symbols := a.Config.Server.WarmSymbols
	if schedule == "" || len(symbols) == 0 {
		a.Logger.Debug().Msg("Cache warm job disabled")
		return
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		warmCache(context.Background(), a.MarketService, a.Logger, symbols)
	})
	if err != nil {
		a.Logger.Warn().Err(err).Str("schedule", schedule).Msg("Invalid warm schedule, job disabled")
		return
	}

	c.Start()
	a.warmCron = &warmScheduler{cron: c}
	a.Logger.Info().
		Str("schedule", schedule).
		Int("symbols", len(symbols)).
		Msg("Cache warm job started")
}

// StopWarmScheduler stops the cron job, waiting for a running warm pass
// to finish.
func (a *App) StopWarmScheduler() {
	if a.warmCron == nil {
		return
	}
	<-a.warmCron.cron.Stop().Done()
	a.warmCron = nil
}

// warmCache refreshes prices and fundamentals for the symbol list. The
// service's own caching makes the results available to later requests.
func warmCache(ctx context.Context, market interfaces.MarketDataService, logger *common.Logger, symbols []string) {
	start := time.Now()

	quotes := market.GetPrices(ctx, symbols)
	priced := 0
	for _, q := range quotes {
		if q.HasPrice() {
			priced++
		}
	}

	for _, symbol := range symbols {
		market.GetFundamentals(ctx, symbol)
	}

	logger.Info().
		Int("symbols", len(symbols)).
		Int("priced", priced).
		Dur("elapsed", time.Since(start)).
		Msg("Cache warm pass complete")
}
