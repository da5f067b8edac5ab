package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordRequest(t *testing.T) {
	before := getCounterValue(HTTPRequestsTotal, "GET", "/gyms", "200")
	RecordRequest("GET", "/gyms", "200", 20*time.Millisecond)
	assert.Equal(t, before+1, getCounterValue(HTTPRequestsTotal, "GET", "/gyms", "200"))
}

func TestRecordAuthAndPayout(t *testing.T) {
	RecordAuth("login", "ok")
	RecordAuth("login", "ok")
	RecordPayout("insufficient_balance")
	assert.GreaterOrEqual(t, getCounterValue(AuthOutcomesTotal, "login", "ok"), 2.0)
	assert.GreaterOrEqual(t, getCounterValue(PayoutRequestsTotal, "insufficient_balance"), 1.0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordPayout("ok")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gymhub_payout_requests_total")
}
