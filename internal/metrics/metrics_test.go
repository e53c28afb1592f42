package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveResolution(t *testing.T) {
	before := testutil.ToFloat64(resolutionsTotal.WithLabelValues("ipfs", "false"))

	ObserveResolution("ipfs", false, 120*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(resolutionsTotal.WithLabelValues("ipfs", "false")))
}

func TestObserveProbe(t *testing.T) {
	okBefore := testutil.ToFloat64(gatewayProbesTotal.WithLabelValues("ipfs.io", "success"))
	failBefore := testutil.ToFloat64(gatewayProbesTotal.WithLabelValues("ipfs.io", "failure"))

	ObserveProbe("ipfs.io", true)
	ObserveProbe("ipfs.io", false)
	ObserveProbe("ipfs.io", false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(gatewayProbesTotal.WithLabelValues("ipfs.io", "success")))
	assert.Equal(t, failBefore+2, testutil.ToFloat64(gatewayProbesTotal.WithLabelValues("ipfs.io", "failure")))
}

func TestObserveLockContention(t *testing.T) {
	before := testutil.ToFloat64(lockContentionTotal)
	ObserveLockContention()
	assert.Equal(t, before+1, testutil.ToFloat64(lockContentionTotal))
}
