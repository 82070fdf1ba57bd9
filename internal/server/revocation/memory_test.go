package revocation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_Contract(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	runStoreContract(t, NewMemoryStoreWithClock(clock.Now), clock.Advance)
}

func TestMemoryStore_ExpiredEntryDroppedOnRead(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.SetWithExpire(ctx, "logout:u1", "t", time.Second))
	require.Equal(t, 1, s.Len())

	clock.Advance(time.Second)
	_, _ = s.Get(ctx, "logout:u1")
	require.Equal(t, 0, s.Len())
}

func TestMemoryStore_ConcurrentOverwriteLastWriteWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, RefreshKey("u1"), fmt.Sprintf("tok-%d", i))
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, RefreshKey("u1"))
	require.NoError(t, err)
	require.Contains(t, v, "tok-")
	require.Equal(t, 1, s.Len())
}
