package server_test

import (
	"net/http"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/server"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountChainActivity(t *testing.T) {
	f := newFixture(t, server.Options{})

	f.send(f.buyer, f.saleTx(f.buyer, units.MustParse("5"), "buyTokens", units.MustParse("10")))
	f.send(f.buyer, f.payTx(f.buyer, units.MustParse("1")))

	_, err := f.c.SendTransaction(f.saleTx(f.buyer, nil, "finalize"))
	require.Error(t, err)

	families, err := f.reg.Gather()
	require.NoError(t, err)
	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "," + l.GetName() + "=" + l.GetValue()
			}
			byName[key] = v
		}
	}

	sale := "sale=" + f.sale.Hex()
	assert.Equal(t, 2.0, byName["w3sale_purchases_total,"+sale])
	assert.Equal(t, 12.0, byName["w3sale_tokens_sold_total,"+sale])
	assert.Equal(t, 6.0, byName["w3sale_currency_raised_total,"+sale])
	assert.Equal(t, 1.0, byName["w3sale_transactions_total,method=buyTokens"])
	assert.Equal(t, 1.0, byName["w3sale_transactions_total,method=receive"])
	assert.Equal(t, 1.0, byName["w3sale_rejections_total,code=NOT_OWNER"])
	assert.Equal(t, float64(f.c.Height()), byName["w3sale_block_height"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, server.Options{})
	f.send(f.buyer, f.saleTx(f.buyer, units.MustParse("5"), "buyTokens", units.MustParse("10")))

	w := f.do(http.MethodGet, "/metrics", nil)
	expectStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "w3sale_purchases_total")
	assert.Contains(t, w.Body.String(), "w3sale_transactions_total")
}
