package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Coalesces(t *testing.T) {
	s := NewSignal()
	assert.True(t, s.Post())
	assert.False(t, s.Post())
	assert.False(t, s.Post())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))

	// 多次投递只唤醒一次
	assert.False(t, s.TryTake())
}

func TestSignal_WaitCancelled(t *testing.T) {
	s := NewSignal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestMailbox_Overwrite(t *testing.T) {
	m := NewMailbox[int]()
	assert.False(t, m.Post(1))
	assert.True(t, m.Post(2))
	assert.True(t, m.Post(3))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := m.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, ok := m.TryReceive()
	assert.False(t, ok)
}

func TestMailbox_ReceiveBlocksUntilPost(t *testing.T) {
	m := NewMailbox[string]()
	got := make(chan string, 1)
	go func() {
		v, err := m.Receive(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	m.Post("red")

	select {
	case v := <-got:
		assert.Equal(t, "red", v)
	case <-time.After(time.Second):
		t.Fatal("receive did not wake up")
	}
}

func TestGate_SingleOwner(t *testing.T) {
	var g Gate
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
	assert.True(t, g.Busy())
	g.Release()
	assert.False(t, g.Busy())
	assert.True(t, g.TryAcquire())
}

func TestLatch(t *testing.T) {
	var l Latch
	assert.False(t, l.TryTake())
	assert.True(t, l.Set())
	assert.False(t, l.Set())
	assert.True(t, l.Pending())
	assert.True(t, l.TryTake())
	assert.False(t, l.Pending())
}
