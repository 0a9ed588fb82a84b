package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterIncreaseDecrease(t *testing.T) {
	var c Counter

	c.Inc()
	c.Add(4)
	assert.Equal(t, int64(5), c.Int64())

	c.Sub(3)
	c.Dec()
	assert.Equal(t, int64(1), c.Int64())
}

func TestCounterDecrementFromOne(t *testing.T) {
	c := Counter(1)
	c.Dec()
	assert.Equal(t, int64(0), c.Int64())
}

func TestCounterNeverGoesNegative(t *testing.T) {
	c := Counter(0)

	defer func() {
		r := recover()
		require.NotNil(t, r, "decrementing an empty counter must panic")
		v, ok := r.(*InvariantViolation)
		require.True(t, ok)
		assert.Equal(t, int64(0), v.Current)
		assert.Equal(t, int64(1), v.Delta)
		// value is left untouched
		assert.Equal(t, int64(0), c.Int64())
	}()

	c.Dec()
}

func TestCounterRejectsNegativeAmounts(t *testing.T) {
	c := Counter(3)
	assert.Panics(t, func() { c.Add(-1) })
	assert.Panics(t, func() { c.Sub(-1) })
	assert.Equal(t, int64(3), c.Int64())
}
