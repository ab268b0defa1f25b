package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mintmart/internal/chain"
	"mintmart/internal/config"
	"mintmart/internal/domain"
	"mintmart/internal/services"
)

const wallet = "0x00000000000000000000000000000000000000aa"

func TestEligibleUngatedIsTriviallyTrue(t *testing.T) {
	fake := chain.NewFake()
	svc := services.NewEligibilityService(fake, config.GatingBoolean, 0)

	ok, err := svc.Eligible(context.Background(), wallet, "", 3)
	if err != nil || !ok {
		t.Fatalf("ungated should be eligible, got ok=%v err=%v", ok, err)
	}
	if fake.Called != 0 {
		t.Fatalf("ungated check must not hit the chain, got %d calls", fake.Called)
	}
}

func TestEligibleWalletWithoutToken(t *testing.T) {
	fake := chain.NewFake()
	svc := services.NewEligibilityService(fake, config.GatingBoolean, 0)

	ok, err := svc.Eligible(context.Background(), wallet, "ape-club", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("wallet owns nothing from ape-club, must not be eligible")
	}
}

// Ownership revoked after a render-time preview must fail at checkout,
// even within the preview cache's TTL.
func TestEligibleRevokedBetweenRenderAndCheckout(t *testing.T) {
	fake := chain.NewFake()
	fake.Set(wallet, "ape-club", 1)
	svc := services.NewEligibilityService(fake, config.GatingBoolean, time.Minute)

	ok, err := svc.Preview(context.Background(), wallet, "ape-club", 1)
	if err != nil || !ok {
		t.Fatalf("render-time preview should be eligible, got ok=%v err=%v", ok, err)
	}

	fake.Set(wallet, "ape-club", 0) // token transferred away

	ok, err = svc.Eligible(context.Background(), wallet, "ape-club", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("checkout must re-check ownership, stale preview leaked through")
	}
}

func TestPreviewServesCachedCountWithinTTL(t *testing.T) {
	fake := chain.NewFake()
	fake.Set(wallet, "ape-club", 2)
	svc := services.NewEligibilityService(fake, config.GatingBoolean, time.Minute)

	if _, err := svc.Preview(context.Background(), wallet, "ape-club", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Preview(context.Background(), wallet, "ape-club", 1); err != nil {
		t.Fatal(err)
	}
	if fake.Called != 1 {
		t.Fatalf("second preview within TTL should be served from cache, got %d chain calls", fake.Called)
	}
}

func TestPreviewRefreshesAfterTTLExpiry(t *testing.T) {
	fake := chain.NewFake()
	fake.Set(wallet, "ape-club", 1)
	svc := services.NewEligibilityService(fake, config.GatingBoolean, 5*time.Millisecond)

	ok, err := svc.Preview(context.Background(), wallet, "ape-club", 1)
	if err != nil || !ok {
		t.Fatalf("want eligible, got ok=%v err=%v", ok, err)
	}

	fake.Set(wallet, "ape-club", 0) // token transferred away
	time.Sleep(20 * time.Millisecond)

	ok, err = svc.Preview(context.Background(), wallet, "ape-club", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expired cache entry served a stale count")
	}
	if fake.Called != 2 {
		t.Fatalf("preview past the TTL must query the chain again, got %d calls", fake.Called)
	}
}

func TestEligibleOracleDown(t *testing.T) {
	fake := chain.NewFake()
	fake.Fail(domain.ErrOracleUnavailable)
	svc := services.NewEligibilityService(fake, config.GatingBoolean, 0)

	_, err := svc.Eligible(context.Background(), wallet, "ape-club", 1)
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("want ErrOracleUnavailable, got %v", err)
	}
}

func TestPerUnitGatingBoundsQuantity(t *testing.T) {
	fake := chain.NewFake()
	fake.Set(wallet, "ape-club", 2)
	svc := services.NewEligibilityService(fake, config.GatingPerUnit, 0)

	ok, err := svc.Eligible(context.Background(), wallet, "ape-club", 2)
	if err != nil || !ok {
		t.Fatalf("2 tokens should unlock 2 units, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.Eligible(context.Background(), wallet, "ape-club", 3)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("2 tokens must not unlock 3 units under per-unit gating")
	}
}
