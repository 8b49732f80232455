package crypto

import (
	"context"
	"errors"
)

// Pool bounds the number of concurrent Argon2 derivations so password
// hashing cannot starve request-handling goroutines. Hashing itself is pure
// CPU work with no shared state; the pool only limits parallelism.
type Pool struct {
	slots chan struct{}
}

// NewPool builds a hashing pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{slots: make(chan struct{}, workers)}
}

// Hash runs HashPassword on a pool slot, waiting for one to free up or for
// the context to be cancelled.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()

	return HashPassword(password)
}

// Verify runs VerifyPassword on a pool slot.
func (p *Pool) Verify(ctx context.Context, password, encoded string) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	return VerifyPassword(password, encoded)
}

func (p *Pool) acquire(ctx context.Context) error {
	if p == nil {
		return errors.New("crypto: nil pool")
	}
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	<-p.slots
}
