package listctl

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32

	for i := int32(1); i <= 3; i++ {
		i := i
		d.Debounce(func() {
			calls.Add(1)
			last.Store(i)
		})
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(3), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Debounce(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.False(t, d.Pending())
}

func TestSnapshotPageCount(t *testing.T) {
	testCases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{total: 0, perPage: 15, want: 1},
		{total: 15, perPage: 15, want: 1},
		{total: 16, perPage: 15, want: 2},
		{total: 47, perPage: 15, want: 4},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Snapshot{Total: tc.total, RowsPerPage: tc.perPage}.PageCount())
	}
}
