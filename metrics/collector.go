// Package metrics exposes in-process Prometheus instrumentation for the
// engine, adapted from the teacher's metrics/prometheus.go collector and
// trimmed to the domains this module actually implements (orders,
// matching, trades, positions, liquidations, insurance fund, ADL,
// funding, mark price). No HTTP exposition: wire APIs are out of scope,
// so this package never wires promhttp — callers scrape the registry
// in-process if they need to.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the engine's Prometheus metric vectors.
type Collector struct {
	OrdersTotal    *prometheus.CounterVec
	OrdersActive   *prometheus.GaugeVec
	MatchingLatency *prometheus.HistogramVec
	OrderbookDepth *prometheus.GaugeVec
	SpreadBps      *prometheus.GaugeVec

	TradesTotal *prometheus.CounterVec
	TradeVolume *prometheus.CounterVec

	PositionsOpen *prometheus.GaugeVec
	UnrealizedPnL *prometheus.GaugeVec

	LiquidationsTotal  *prometheus.CounterVec
	LiquidationValue   *prometheus.CounterVec
	LiquidationDeficit *prometheus.CounterVec

	InsuranceFundBalance *prometheus.GaugeVec
	InsuranceFundInflow  *prometheus.CounterVec
	InsuranceFundOutflow *prometheus.CounterVec

	ADLEventsTotal      *prometheus.CounterVec
	ADLValueDeleveraged *prometheus.CounterVec

	FundingRate     *prometheus.GaugeVec
	FundingPayments *prometheus.CounterVec

	MarkPrice  *prometheus.GaugeVec
	IndexPrice *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	collector     *Collector
	collectorOnce sync.Once
)

// GetCollector returns the process-wide singleton collector, constructing
// it (and a private registry, so tests can create many engines without
// colliding on the default global registry) on first use.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "orders", Name: "total", Help: "Total number of orders submitted"},
		[]string{"market_id", "side", "type"},
	)
	c.OrdersActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "orders", Name: "active", Help: "Number of resting orders"},
		[]string{"market_id"},
	)
	c.MatchingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "perpcore", Subsystem: "matching", Name: "latency_ms", Help: "Matching pass duration"},
		[]string{"market_id"},
	)
	c.OrderbookDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "matching", Name: "orderbook_depth", Help: "Resting size at top of book"},
		[]string{"market_id", "side"},
	)
	c.SpreadBps = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "matching", Name: "spread_bps", Help: "Best bid/ask spread in basis points"},
		[]string{"market_id"},
	)

	c.TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "trades", Name: "total", Help: "Total number of fills"},
		[]string{"market_id"},
	)
	c.TradeVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "trades", Name: "volume", Help: "Cumulative traded notional"},
		[]string{"market_id"},
	)

	c.PositionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "positions", Name: "open", Help: "Number of open positions"},
		[]string{"market_id"},
	)
	c.UnrealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "positions", Name: "unrealized_pnl", Help: "Aggregate unrealized PnL"},
		[]string{"market_id"},
	)

	c.LiquidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "liquidations", Name: "total", Help: "Total number of liquidations"},
		[]string{"market_id"},
	)
	c.LiquidationValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "liquidations", Name: "value", Help: "Cumulative liquidated notional"},
		[]string{"market_id"},
	)
	c.LiquidationDeficit = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "liquidations", Name: "deficit", Help: "Cumulative bad debt"},
		[]string{"market_id"},
	)

	c.InsuranceFundBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "insurance_fund", Name: "balance", Help: "Current insurance fund balance"},
		[]string{},
	)
	c.InsuranceFundInflow = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "insurance_fund", Name: "inflow", Help: "Cumulative insurance fund deposits"},
		[]string{},
	)
	c.InsuranceFundOutflow = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "insurance_fund", Name: "outflow", Help: "Cumulative insurance fund payouts"},
		[]string{},
	)

	c.ADLEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "adl", Name: "events_total", Help: "Total number of ADL executions"},
		[]string{"market_id"},
	)
	c.ADLValueDeleveraged = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "adl", Name: "value_deleveraged", Help: "Cumulative notional deleveraged"},
		[]string{"market_id"},
	)

	c.FundingRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "funding", Name: "rate", Help: "Current per-period funding rate"},
		[]string{"market_id"},
	)
	c.FundingPayments = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "perpcore", Subsystem: "funding", Name: "payments", Help: "Cumulative gross funding transferred"},
		[]string{"market_id"},
	)

	c.MarkPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "oracle", Name: "mark_price", Help: "Current mark price"},
		[]string{"market_id"},
	)
	c.IndexPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "perpcore", Subsystem: "oracle", Name: "index_price", Help: "Current index price"},
		[]string{"market_id"},
	)

	c.registerAll()
	return c
}

func (c *Collector) registerAll() {
	c.registry.MustRegister(c.OrdersTotal)
	c.registry.MustRegister(c.OrdersActive)
	c.registry.MustRegister(c.MatchingLatency)
	c.registry.MustRegister(c.OrderbookDepth)
	c.registry.MustRegister(c.SpreadBps)

	c.registry.MustRegister(c.TradesTotal)
	c.registry.MustRegister(c.TradeVolume)

	c.registry.MustRegister(c.PositionsOpen)
	c.registry.MustRegister(c.UnrealizedPnL)

	c.registry.MustRegister(c.LiquidationsTotal)
	c.registry.MustRegister(c.LiquidationValue)
	c.registry.MustRegister(c.LiquidationDeficit)

	c.registry.MustRegister(c.InsuranceFundBalance)
	c.registry.MustRegister(c.InsuranceFundInflow)
	c.registry.MustRegister(c.InsuranceFundOutflow)

	c.registry.MustRegister(c.ADLEventsTotal)
	c.registry.MustRegister(c.ADLValueDeleveraged)

	c.registry.MustRegister(c.FundingRate)
	c.registry.MustRegister(c.FundingPayments)

	c.registry.MustRegister(c.MarkPrice)
	c.registry.MustRegister(c.IndexPrice)
}

// Registry returns the collector's private Prometheus registry, for
// callers that want to gather metrics in-process (e.g. for a test
// assertion) without standing up an HTTP exposition endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
