package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the presale service.
type Metrics struct {
	// Purchase flow
	PurchasesTotal       *prometheus.CounterVec
	PurchaseDuration     *prometheus.HistogramVec
	PurchaseLamports     prometheus.Counter
	SupportEscalations   prometheus.Counter

	// Quote service
	QuoteRefreshTotal *prometheus.CounterVec
	SolPriceUSD       prometheus.Gauge

	// Chain RPC
	RPCCallsTotal   *prometheus.CounterVec
	RPCCallDuration *prometheus.HistogramVec
	RPCErrorsTotal  *prometheus.CounterVec

	// Forms
	ContactSubmissions prometheus.Counter
	ScamReportsTotal   prometheus.Counter

	// Rate limiting
	RateLimitHitsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		PurchasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_purchases_total",
				Help: "Purchase attempts by final outcome",
			},
			[]string{"outcome"},
		),
		PurchaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "presale_purchase_duration_seconds",
				Help:    "Time from prepare to confirmation",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		PurchaseLamports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presale_purchase_lamports_total",
				Help: "Total lamports transferred by confirmed purchases",
			},
		),
		SupportEscalations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presale_support_escalations_total",
				Help: "Sessions routed to the support-contact state",
			},
		),
		QuoteRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_quote_refresh_total",
				Help: "Price feed refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		SolPriceUSD: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "presale_sol_price_usd",
				Help: "Last known SOL/USD price",
			},
		),
		RPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_rpc_calls_total",
				Help: "Chain RPC calls",
			},
			[]string{"method", "network"},
		),
		RPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "presale_rpc_call_duration_seconds",
				Help:    "Chain RPC call latency",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "network"},
		),
		RPCErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_rpc_errors_total",
				Help: "Chain RPC call failures",
			},
			[]string{"method", "network"},
		),
		ContactSubmissions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presale_contact_submissions_total",
				Help: "Accepted post-purchase contact submissions",
			},
		),
		ScamReportsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presale_scam_reports_total",
				Help: "Accepted scam report submissions",
			},
		),
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_rate_limit_hits_total",
				Help: "Requests rejected by rate limiting",
			},
			[]string{"limit_type"},
		),
	}
}

// ObserveRPCCall records a chain RPC call with duration and error status.
func (m *Metrics) ObserveRPCCall(method, network string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RPCCallsTotal.WithLabelValues(method, network).Inc()
	m.RPCCallDuration.WithLabelValues(method, network).Observe(duration.Seconds())
	if err != nil {
		m.RPCErrorsTotal.WithLabelValues(method, network).Inc()
	}
}

// ObservePurchase records a finished purchase attempt.
func (m *Metrics) ObservePurchase(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(outcome).Inc()
	m.PurchaseDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveRateLimit records a rate limit rejection.
func (m *Metrics) ObserveRateLimit(limitType string) {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.WithLabelValues(limitType).Inc()
}
