package payment

import (
	"context"
	"sync"

	"mintmart/internal/domain"
)

// Fake is an in-memory payment collaborator for tests and local dev.
// It is idempotent the way a real processor is: authorizing the same
// order twice returns the same reference, capturing a captured ref is
// a no-op success.
type Fake struct {
	mu         sync.Mutex
	refs       map[string]string // orderID -> ref
	captured   map[string]bool
	voided     map[string]bool
	AuthErrs   []error // consumed one per Authorize call, nil = success
	CaptErrs   []error
	Authorizes int
	Captures   int
	Voids      int
}

func NewFake() *Fake {
	return &Fake{
		refs:     make(map[string]string),
		captured: make(map[string]bool),
		voided:   make(map[string]bool),
	}
}

func (f *Fake) Authorize(_ context.Context, _ int64, orderID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Authorizes++
	if err := pop(&f.AuthErrs); err != nil {
		return "", err
	}
	if ref, ok := f.refs[orderID]; ok {
		return ref, nil
	}
	ref := "auth-" + orderID
	f.refs[orderID] = ref
	return ref, nil
}

func (f *Fake) Capture(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Captures++
	if err := pop(&f.CaptErrs); err != nil {
		return err
	}
	if f.voided[ref] {
		return domain.ErrPaymentRejected
	}
	f.captured[ref] = true
	return nil
}

func (f *Fake) Void(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Voids++
	f.voided[ref] = true
	return nil
}

func (f *Fake) Captured(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captured[ref]
}

func (f *Fake) Voided(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voided[ref]
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
