package chain

import (
	"context"
	"sync"
)

// Fake is an in-memory ownership ledger for tests and local dev.
// Ownership can be granted and revoked mid-test to simulate transfers
// happening between render time and checkout time.
type Fake struct {
	mu     sync.Mutex
	owned  map[string]int // wallet|collection -> count
	err    error
	Called int
}

func NewFake() *Fake {
	return &Fake{owned: make(map[string]int)}
}

func (f *Fake) Set(wallet, collection string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owned[wallet+"|"+collection] = count
}

// Fail makes every subsequent query return err (nil restores health).
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *Fake) OwnedCount(_ context.Context, wallet, collection string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Called++
	if f.err != nil {
		return 0, f.err
	}
	return f.owned[wallet+"|"+collection], nil
}
