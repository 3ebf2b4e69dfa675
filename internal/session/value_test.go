package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ReplaysLatestToNewSubscriber(t *testing.T) {
	v := NewValue(1)
	v.Set(2)
	v.Set(3)

	sub := v.Subscribe()
	defer sub.Unsubscribe()

	require.Equal(t, 3, <-sub.C())
	assert.Equal(t, 3, v.Get())
}

func TestValue_SlowSubscriberSeesNewest(t *testing.T) {
	v := NewValue("a")
	sub := v.Subscribe()
	defer sub.Unsubscribe()

	// Nobody reads while these are published; Set must not block.
	for _, s := range []string{"b", "c", "d"} {
		v.Set(s)
	}
	assert.Equal(t, "d", <-sub.C())

	select {
	case got := <-sub.C():
		t.Fatalf("unexpected extra value %q", got)
	default:
	}
}

func TestValue_IndependentSubscribers(t *testing.T) {
	v := NewValue(0)
	a := v.Subscribe()
	b := v.Subscribe()
	defer a.Unsubscribe()
	defer b.Unsubscribe()

	require.Equal(t, 0, <-a.C())
	v.Set(7)
	assert.Equal(t, 7, <-a.C())
	assert.Equal(t, 7, <-b.C(), "b never drained the initial value, so it only gets the newest")
}

func TestValue_UnsubscribeClosesAndIsIdempotent(t *testing.T) {
	v := NewValue(false)
	sub := v.Subscribe()
	<-sub.C()

	sub.Unsubscribe()
	sub.Unsubscribe()

	_, open := <-sub.C()
	assert.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel.
	v.Set(true)
	assert.True(t, v.Get())
}

func TestValue_ConcurrentSetters(t *testing.T) {
	v := NewValue(0)
	sub := v.Subscribe()
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, v.Get(), <-sub.C())
}
