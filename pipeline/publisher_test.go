package pipeline

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrySendNeverBlocks(t *testing.T) {
	metrics := NewMetrics(KindIT)
	r := NewRepublisher(metrics)

	// Fill the bounded queue with no worker draining it
	for i := 0; i < 100; i++ {
		assert.True(t, r.TrySend("data/processed/it_measurement", []byte(`{}`)))
	}

	// The next send must drop rather than block the caller
	assert.False(t, r.TrySend("data/processed/it_measurement", []byte(`{}`)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RepublishDropped))
}
