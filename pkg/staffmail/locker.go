package staffmail

import (
	"context"
	"hash/fnv"
)

const defaultStripes = 64

// Locker serialises work per key. Keys are hashed onto a fixed set of stripes, so unrelated keys may
// occasionally wait for each other but the same key never runs twice at once.
type Locker struct {
	stripes []chan struct{}
}

// NewLocker creates a Locker with n stripes. A non-positive n uses the default.
func NewLocker(n int) *Locker {
	if n <= 0 {
		n = defaultStripes
	}

	stripes := make([]chan struct{}, n)
	for i := range stripes {
		stripes[i] = make(chan struct{}, 1)
	}
	return &Locker{stripes: stripes}
}

// Lock blocks until the key is free or the context is done. The returned function releases the key.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	s := l.stripe(key)
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Locker) stripe(key string) chan struct{} {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return l.stripes[h.Sum32()%uint32(len(l.stripes))]
}

func ticketKey(id string) string {
	return "ticket:" + id
}

func userKey(id string) string {
	return "user:" + id
}
