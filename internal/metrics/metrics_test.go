package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequestDefaultsRoute(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404"))
	ObserveRequest("  ", "GET", 404, time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404"))
	assert.Equal(t, before+1, after)
}

func TestSetBoardClientsClampsNegative(t *testing.T) {
	SetBoardClients(-3)
	assert.Equal(t, float64(0), testutil.ToFloat64(BoardClients))
	SetBoardClients(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(BoardClients))
}

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(ContentMutations.WithLabelValues("news", "create"))
	RecordMutation("news", "create")
	assert.Equal(t, before+1, testutil.ToFloat64(ContentMutations.WithLabelValues("news", "create")))
}
