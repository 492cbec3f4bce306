package datatable

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_OnlyLastRuns(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, 500*time.Millisecond)

	fired := make(chan string, 4)
	for _, v := range []string{"a", "ab", "abc"} {
		v := v
		d.Schedule(func() { fired <- v })
		clock.Advance(100 * time.Millisecond)
	}
	require.True(t, d.Pending())

	clock.Advance(500 * time.Millisecond)

	select {
	case v := <-fired:
		assert.Equal(t, "abc", v)
	case <-time.After(time.Second):
		t.Fatal("debounced task did not run")
	}
	select {
	case v := <-fired:
		t.Fatalf("unexpected extra run: %q", v)
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, d.Pending())
}

func TestDebouncer_NotBeforeDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, 500*time.Millisecond)

	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	clock.Advance(499 * time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
	assert.True(t, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, time.Second)

	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	require.True(t, d.Stop())
	require.False(t, d.Stop())

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, time.Second)

	var runs atomic.Int32
	assert.False(t, d.Flush())

	d.Schedule(func() { runs.Add(1) })
	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), runs.Load())

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "flushed task must not run again")
}

func TestDebouncer_Defaults(t *testing.T) {
	d := NewDebouncer(nil, 0)
	assert.Equal(t, DefaultDebounce, d.Delay())
}
