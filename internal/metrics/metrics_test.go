package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInc(t *testing.T) {
	before := testutil.ToFloat64(SearchTotal.WithLabelValues("actor"))
	Inc(SearchTotal, "actor")
	Inc(SearchTotal, "actor")
	assert.Equal(t, before+2, testutil.ToFloat64(SearchTotal.WithLabelValues("actor")))
}

func TestCountersRegistered(t *testing.T) {
	SuggestTotal.Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SuggestTotal), float64(1))
	Inc(StaleDropped, "search")
	assert.Positive(t, testutil.CollectAndCount(StaleDropped))
}
