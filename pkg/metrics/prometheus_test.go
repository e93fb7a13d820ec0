package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordSourceCall("daily", "ok")
	r.RecordSourceCall("daily", "ok")
	r.RecordSourceCall("daily_basic", "upstream")
	r.RecordCacheLookup("hit")
	r.RecordCoverage("quote", 87)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sourceCalls.WithLabelValues("daily", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceCalls.WithLabelValues("daily_basic", "upstream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 87.0, testutil.ToFloat64(r.coverage.WithLabelValues("quote")))

	n, err := testutil.GatherAndCount(reg, "stockpull_source_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
