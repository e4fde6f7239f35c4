package server

import (
	"math/big"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const metricNamespace = "w3sale"

// Metrics counts chain activity. It implements chain.Observer.
type Metrics struct {
	transactions *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	purchases    *prometheus.CounterVec
	tokensSold   *prometheus.CounterVec
	raised       *prometheus.CounterVec
	height       prometheus.Gauge
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "transactions_total",
			Help:      "committed transactions by method",
		}, []string{"method"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "rejections_total",
			Help:      "rejected transactions by error code",
		}, []string{"code"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "purchases_total",
			Help:      "Buy events by sale",
		}, []string{"sale"}),
		tokensSold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "tokens_sold_total",
			Help:      "whole tokens sold by sale",
		}, []string{"sale"}),
		raised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "currency_raised_total",
			Help:      "whole units of currency paid into sales",
		}, []string{"sale"}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "block_height",
			Help:      "latest committed block",
		}),
	}
	for _, c := range []prometheus.Collector{m.transactions, m.rejections, m.purchases, m.tokensSold, m.raised, m.height} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Committed records a receipt.
func (m *Metrics) Committed(r *chain.Receipt) {
	m.transactions.WithLabelValues(r.Method).Inc()
	m.height.Set(float64(r.BlockNumber))

	for _, l := range r.Logs {
		d, err := contract.DecodeLog(l.Eth())
		if err != nil || d.Name != "Buy" {
			continue
		}
		sale := l.Address.Hex()
		m.purchases.WithLabelValues(sale).Inc()
		if amount, ok := d.Fields["amount"].(*big.Int); ok {
			m.tokensSold.WithLabelValues(sale).Add(whole(amount))
		}
		if r.To != nil && *r.To == l.Address && r.Value != nil {
			m.raised.WithLabelValues(sale).Add(whole(r.Value))
		}
	}
}

// Rejected records a rejection by its code.
func (m *Metrics) Rejected(_ common.Address, err error) {
	code := chain.Code(err)
	if code == "" {
		code = "INTERNAL"
	}
	m.rejections.WithLabelValues(code).Inc()
}

func whole(v *big.Int) float64 {
	return decimal.NewFromBigInt(v, -units.Decimals).InexactFloat64()
}
