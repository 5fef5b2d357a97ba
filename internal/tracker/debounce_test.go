package tracker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls, last atomic.Int64
	for i := int64(1); i <= 10; i++ {
		v := i
		d.Call(func() {
			calls.Add(1)
			last.Store(v)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(10), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_FlushAndCancel(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var calls atomic.Int64
	d.Call(func() { calls.Add(1) })
	assert.True(t, d.Pending())

	d.Flush()
	assert.Equal(t, int64(1), calls.Load())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Equal(t, int64(1), calls.Load())

	d.Call(func() { calls.Add(1) })
	d.Cancel()
	d.Flush()
	assert.Equal(t, int64(1), calls.Load())
}
