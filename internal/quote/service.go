package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoedu/presale-server/internal/circuitbreaker"
	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/metrics"
)

// Service owns the SOL/USD quote state. The price is written only by
// Refresh (the periodic refresher or a manual trigger) and read by
// everything else. A failed refresh keeps the previous price
// (silent degrade); staleness is surfaced through the AsOf timestamp.
type Service struct {
	cfg     config.QuoteConfig
	presale config.PresaleConfig

	httpClient *http.Client
	breakers   *circuitbreaker.Manager
	metrics    *metrics.Metrics
	clock      func() time.Time

	mu        sync.RWMutex
	price     float64
	updatedAt time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// priceResponse matches the simple-price JSON shape of the default source:
// {"solana":{"usd":123.45}}
type priceResponse struct {
	Solana struct {
		USD float64 `json:"usd"`
	} `json:"solana"`
}

// NewService creates the quote service. The initial price is zero until the
// first successful refresh; DeriveAmounts degrades gracefully meanwhile.
func NewService(cfg config.QuoteConfig, presale config.PresaleConfig, breakers *circuitbreaker.Manager, collector *metrics.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		presale: presale,
		httpClient: &http.Client{
			Timeout: cfg.Timeout.Duration,
		},
		breakers: breakers,
		metrics:  collector,
		clock:    time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Price returns the last known SOL/USD price and when it was fetched.
func (s *Service) Price() (float64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.price, s.updatedAt
}

// Derive computes purchase amounts for raw input at the current price.
func (s *Service) Derive(rawInput string) Amounts {
	price, _ := s.Price()
	return DeriveAmounts(rawInput, price, s.presale.TokenPriceUSD)
}

// Amounts reports the USD value and token quantity for a SOL amount at the
// current price. Satisfies the transfer executor's quoter dependency.
func (s *Service) Amounts(amountSOL string) (float64, uint64) {
	a := s.Derive(amountSOL)
	return a.USDValue, a.TokenAmount
}

// Vesting splits a token amount per the configured vesting schedule.
func (s *Service) Vesting(tokenAmount uint64) VestingBreakdown {
	return SplitVesting(tokenAmount, s.presale.VestingImmediatePercent, s.presale.VestingDuration.Duration)
}

// Refresh fetches the current price from the configured source. On success
// the quote state is updated and the new price returned. On failure the
// previous price is left untouched and the error returned to the caller;
// nothing user-facing happens, the next tick or manual refresh retries.
func (s *Service) Refresh(ctx context.Context) (float64, error) {
	result, err := s.breakers.Execute(circuitbreaker.ServicePriceFeed, func() (interface{}, error) {
		return s.fetchPrice(ctx)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.QuoteRefreshTotal.WithLabelValues("error").Inc()
		}
		log.Warn().Err(err).Msg("quote.refresh_failed")
		return 0, err
	}

	price := result.(float64)

	s.mu.Lock()
	s.price = price
	s.updatedAt = s.clock()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.QuoteRefreshTotal.WithLabelValues("success").Inc()
		s.metrics.SolPriceUSD.Set(price)
	}
	log.Debug().Float64("price_usd", price).Msg("quote.refreshed")

	return price, nil
}

func (s *Service) fetchPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	var decoded priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}
	if decoded.Solana.USD <= 0 {
		return 0, fmt.Errorf("price source returned non-positive price %v", decoded.Solana.USD)
	}

	return decoded.Solana.USD, nil
}

// Start begins the periodic refresh loop, fetching once immediately.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.refreshLoop(ctx)
}

// Stop halts the refresh loop. In-flight fetches are not aborted; the loop
// simply stops scheduling further ticks.
func (s *Service) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.RefreshInterval.Duration)
	defer ticker.Stop()

	if _, err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("quote.initial_refresh_failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}
