package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerRunsLatestOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var last, runs int32
	for i := int32(1); i <= 3; i++ {
		v := i
		d.Schedule(func() {
			atomic.StoreInt32(&last, v)
			atomic.AddInt32(&runs, 1)
		})
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&last))
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var runs int32
	d.Schedule(func() { atomic.AddInt32(&runs, 1) })
	d.Cancel()

	assert.False(t, d.Pending())
	assert.Never(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 60*time.Millisecond, 10*time.Millisecond)
}
