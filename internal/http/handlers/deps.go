package handlers

import (
	"github.com/jmoiron/sqlx"

	"mintmart/internal/chain"
	"mintmart/internal/config"
	"mintmart/internal/events"
	"mintmart/internal/payment"
	"mintmart/internal/repos"
	"mintmart/internal/services"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, chainClient chain.Client, pay payment.Client, pub events.Publisher) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, invRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	eligSvc := services.NewEligibilityService(chainClient, cfg.Gating, cfg.OracleCacheTTL)
	retry := services.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryBaseDelay * 16,
	}
	checkoutSvc := services.NewCheckoutService(cartSvc, catalogSvc, eligSvc, orderRepo, invRepo, pay, pub, retry)

	return &Deps{
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Eligibility: eligSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Svc: checkoutSvc},
		OrderHandler:    &OrderHandler{Repo: orderRepo},
	}
}
