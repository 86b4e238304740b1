package staffmail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocker_SameKeyIsExclusive(t *testing.T) {
	locks := NewLocker(4)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(ctx, ticketKey("T1"))
			if err != nil {
				t.Error(err)
				return
			}
			defer unlock()

			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxSeen)
}

func TestLocker_ContextCancelled(t *testing.T) {
	locks := NewLocker(1)

	unlock, err := locks.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locks.Lock(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_Release(t *testing.T) {
	locks := NewLocker(0)
	require.Len(t, locks.stripes, defaultStripes)

	unlock, err := locks.Lock(context.Background(), userKey("U1"))
	require.NoError(t, err)
	unlock()

	unlock, err = locks.Lock(context.Background(), userKey("U1"))
	require.NoError(t, err)
	unlock()
}
