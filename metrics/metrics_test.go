package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/types"
)

func TestFirstInitFixesCursorLabel(t *testing.T) {
	Init("main")
	// later callers, like the database plugin, cannot relabel
	Init("")
	Init("other")

	TrackError("indexer", "apply", types.NewInvariantError("asset_balance", "0xa01", "negative balance"))
	TrackError("indexer", "fetch", errors.New("broker gone"))

	families, err := Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, family := range families {
		if family.GetName() != "assetindexer_errors_total" {
			continue
		}
		found = true
		require.Len(t, family.GetMetric(), 2)
		for _, m := range family.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			assert.Equal(t, "main", labels["cursor"])
		}
	}
	assert.True(t, found)

	errs := GetMetrics().Error.Errors
	assert.Equal(t, 1.0, testutil.ToFloat64(errs.WithLabelValues("indexer", "apply", string(types.ErrTypeInvariant))))
	assert.Equal(t, 1.0, testutil.ToFloat64(errs.WithLabelValues("indexer", "fetch", "unknown")))
	assert.Positive(t, testutil.ToFloat64(GetMetrics().Error.LastError.WithLabelValues("indexer")))
}

func TestRecoverFromPanicRepanics(t *testing.T) {
	SetComponentHealth("source", true)

	assert.Panics(t, func() {
		defer RecoverFromPanic("source")
		panic("boom")
	})

	m := GetMetrics().Error
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Panics.WithLabelValues("source")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("source", "recover", errTypePanic)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ComponentHealth.WithLabelValues("source")))
}
