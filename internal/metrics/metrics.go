// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	MetricNameSpace = "sear"
)

var (
	ledgerVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "ledger_version",
			Help:      "version of the last committed ledger mutation",
		},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "ledger_operations_total",
			Help:      "ledger mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	revenueUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "revenue_units_total",
			Help:      "revenue distributed, in smallest currency units",
		},
		[]string{"recipient"},
	)

	openDisputes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "open_disputes",
			Help:      "disputes that are not resolved",
		},
	)

	activeArbitrators = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "active_arbitrators",
			Help:      "arbitrators currently staked",
		},
	)

	platformFeePercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "platform_fee_percent",
			Help:      "current platform fee",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "http_requests_total",
			Help:      "http requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		ledgerVersion,
		ledgerOperations,
		revenueUnits,
		openDisputes,
		activeArbitrators,
		platformFeePercent,
		httpRequests,
	)
}

func LedgerCommitted(version uint64) {
	ledgerVersion.Set(float64(version))
}

func Operation(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ledgerOperations.WithLabelValues(name, result).Inc()
}

// RevenueDistributed records one payment split by recipient class.
func RevenueDistributed(platformFee, licensees, owner int64) {
	revenueUnits.WithLabelValues("platform").Add(float64(platformFee))
	revenueUnits.WithLabelValues("licensees").Add(float64(licensees))
	revenueUnits.WithLabelValues("owner").Add(float64(owner))
}

func OpenDisputes(n int64) {
	openDisputes.Set(float64(n))
}

func ActiveArbitrators(n int64) {
	activeArbitrators.Set(float64(n))
}

func PlatformFee(bp int64) {
	pct, _ := decimal.New(bp, -2).Float64()
	platformFeePercent.Set(pct)
}

func HTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
