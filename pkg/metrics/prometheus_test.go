package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordCacheLookup(true)
	r.RecordCacheLookup(true)
	r.RecordCacheLookup(false)
	r.RecordRateLimited()
	r.RecordFetch("direct", 12)
	r.RecordObservation("kafka")
	r.RecordError("fetch")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.observations.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
}

func TestRecorderHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordAnalysis(0, 0)
	r.RecordAnalysis(10, 3)
	r.RecordLatency("classify", 5*time.Millisecond)
	r.RecordUpstream("chat", time.Second, errors.New("boom"))

	assert.Equal(t, 1, testutil.CollectAndCount(r.fakeRatio))
	assert.Equal(t, 1, testutil.CollectAndCount(r.upstreamLatency))
	n, err := testutil.GatherAndCount(reg, "smartshop_fake_review_ratio")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
