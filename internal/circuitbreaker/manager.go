package circuitbreaker

import (
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/cryptoedu/presale-server/internal/config"
)

// ServiceType identifies an upstream service with its own breaker.
// Isolating the price feed from the chain RPC keeps a flaky oracle from
// blocking purchases, and vice versa.
type ServiceType string

const (
	ServiceSolanaRPC ServiceType = "solana_rpc"
	ServicePriceFeed ServiceType = "price_feed"
)

// Manager holds circuit breakers per upstream service.
type Manager struct {
	breakers map[ServiceType]*gobreaker.CircuitBreaker
	enabled  bool
}

// NewManagerFromConfig creates a circuit breaker manager from application config.
func NewManagerFromConfig(cfg config.CircuitBreakerConfig) *Manager {
	m := &Manager{
		breakers: make(map[ServiceType]*gobreaker.CircuitBreaker),
		enabled:  cfg.Enabled,
	}

	if !cfg.Enabled {
		return m
	}

	m.breakers[ServiceSolanaRPC] = gobreaker.NewCircuitBreaker(settings(string(ServiceSolanaRPC), cfg.SolanaRPC))
	m.breakers[ServicePriceFeed] = gobreaker.NewCircuitBreaker(settings(string(ServicePriceFeed), cfg.PriceFeed))

	return m
}

// Execute wraps a call with the breaker for the given service.
// When breakers are disabled or unconfigured the call passes through.
func (m *Manager) Execute(service ServiceType, fn func() (interface{}, error)) (interface{}, error) {
	if m == nil || !m.enabled {
		return fn()
	}
	breaker, ok := m.breakers[service]
	if !ok {
		return fn()
	}
	return breaker.Execute(fn)
}

// State returns the current breaker state for diagnostics.
func (m *Manager) State(service ServiceType) string {
	if m == nil || !m.enabled {
		return "disabled"
	}
	breaker, ok := m.breakers[service]
	if !ok {
		return "not_configured"
	}
	return breaker.State().String()
}

func settings(name string, cfg config.BreakerServiceConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Duration,
		Timeout:     cfg.Timeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.FailureRatio > 0 && cfg.MinRequests > 0 && counts.Requests >= cfg.MinRequests {
				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
				if failureRate >= cfg.FailureRatio {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit_breaker.state_change")
		},
	}
}
