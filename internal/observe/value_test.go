package observe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func assertEmpty[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value %v", v)
		}
	default:
	}
}

func TestValue_SubscribeReplaysCurrent(t *testing.T) {
	v := NewValue(true)

	ch, cancel := v.Subscribe()
	defer cancel()

	assert.True(t, receive(t, ch))
	assertEmpty(t, ch)
}

func TestValue_SetPublishesOnlyChanges(t *testing.T) {
	v := NewValue("a")
	ch, cancel := v.Subscribe()
	defer cancel()
	receive(t, ch)

	assert.False(t, v.Set("a"))
	assertEmpty(t, ch)

	assert.True(t, v.Set("b"))
	assert.Equal(t, "b", receive(t, ch))
	assert.Equal(t, "b", v.Get())
}

func TestValue_SlowSubscriberSeesLatest(t *testing.T) {
	v := NewValue(0)
	ch, cancel := v.Subscribe()
	defer cancel()

	// Never drained: the producer must not block.
	for i := 1; i <= 100; i++ {
		v.Set(i)
	}

	assert.Equal(t, 100, receive(t, ch))
	assertEmpty(t, ch)
}

func TestValue_MultipleSubscribers(t *testing.T) {
	v := NewValue(false)
	a, cancelA := v.Subscribe()
	b, cancelB := v.Subscribe()
	defer cancelA()
	defer cancelB()
	require.Equal(t, 2, v.Subscribers())

	v.Set(true)

	// First value is the replay, second the change (latest-wins may merge them).
	last := func(ch <-chan bool) bool {
		got := receive(t, ch)
		select {
		case x := <-ch:
			return x
		default:
			return got
		}
	}
	assert.True(t, last(a))
	assert.True(t, last(b))
}

func TestValue_CancelClosesChannel(t *testing.T) {
	v := NewValue(1)
	ch, cancel := v.Subscribe()
	receive(t, ch)

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, v.Subscribers())

	v.Set(2)
}

func TestValue_Close(t *testing.T) {
	v := NewValue(1)
	ch, cancel := v.Subscribe()
	defer cancel()
	receive(t, ch)

	v.Close()
	_, ok := <-ch
	assert.False(t, ok)

	assert.False(t, v.Set(5))
	assert.Equal(t, 1, v.Get())

	late, lateCancel := v.Subscribe()
	defer lateCancel()
	_, ok = <-late
	assert.False(t, ok)
}

func TestValue_ConcurrentSetAndSubscribe(t *testing.T) {
	v := NewValue(0)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ch, cancel := v.Subscribe()
			defer cancel()
			<-ch
			v.Set(n)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, v.Subscribers())
}
