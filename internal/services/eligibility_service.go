package services

import (
	"context"
	"sync"
	"time"

	"mintmart/internal/chain"
	"mintmart/internal/config"
)

// EligibilityService answers whether a wallet currently satisfies a
// product's NFT requirement. Ownership can transfer between render and
// purchase, so eligibility is always re-checked against the chain at
// checkout time. The short-TTL cache here only serves render-time
// previews, never the checkout decision.
type EligibilityService struct {
	chain  chain.Client
	policy config.GatingPolicy
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cachedCount
}

type cachedCount struct {
	count   int
	expires time.Time
}

func NewEligibilityService(c chain.Client, policy config.GatingPolicy, ttl time.Duration) *EligibilityService {
	return &EligibilityService{
		chain:  c,
		policy: policy,
		ttl:    ttl,
		cache:  make(map[string]cachedCount),
	}
}

// Eligible is the at-checkout check: it always queries the chain and
// refreshes the cache with the result. Empty collection means ungated:
// trivially true. Under the per-unit policy one owned token unlocks one
// unit; under the boolean policy any ownership unlocks any quantity.
func (s *EligibilityService) Eligible(ctx context.Context, wallet, collection string, qty int) (bool, error) {
	if collection == "" {
		return true, nil
	}
	count, err := s.chain.OwnedCount(ctx, wallet, collection)
	if err != nil {
		return false, err
	}
	s.store(wallet, collection, count)
	return s.decide(count, qty), nil
}

// Preview is the render-time check backing listing badges. It may serve
// a value up to ttl old; a stale "eligible" here never survives checkout.
func (s *EligibilityService) Preview(ctx context.Context, wallet, collection string, qty int) (bool, error) {
	if collection == "" {
		return true, nil
	}
	key := wallet + "|" + collection

	s.mu.Lock()
	if c, ok := s.cache[key]; ok && time.Now().Before(c.expires) {
		count := c.count
		s.mu.Unlock()
		return s.decide(count, qty), nil
	}
	s.mu.Unlock()

	count, err := s.chain.OwnedCount(ctx, wallet, collection)
	if err != nil {
		return false, err
	}
	s.store(wallet, collection, count)
	return s.decide(count, qty), nil
}

func (s *EligibilityService) decide(count, qty int) bool {
	if s.policy == config.GatingPerUnit {
		return count >= qty
	}
	return count > 0
}

func (s *EligibilityService) store(wallet, collection string, count int) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[wallet+"|"+collection] = cachedCount{count: count, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}
