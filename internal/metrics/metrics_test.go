package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFeedCheck(t *testing.T) {
	before := testutil.ToFloat64(NewArticlesTotal.WithLabelValues("metrics-test"))

	RecordFeedCheck("metrics-test", "ok", 2)
	RecordFeedCheck("metrics-test", "ok", 0)

	assert.Equal(t, before+2, testutil.ToFloat64(NewArticlesTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, float64(2), testutil.ToFloat64(FeedChecksTotal.WithLabelValues("metrics-test", "ok")))
}

func TestRecordDelivery(t *testing.T) {
	okBefore := testutil.ToFloat64(DeliveriesTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(DeliveriesTotal.WithLabelValues("error"))

	RecordDelivery(true)
	RecordDelivery(false)
	RecordDelivery(false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(DeliveriesTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(DeliveriesTotal.WithLabelValues("error")))
}
