package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "mintmart/internal/log"
	"mintmart/internal/services"
	"mintmart/internal/validate"
)

type CheckoutHandler struct {
	Svc *services.CheckoutService
}

type checkoutReq struct {
	WalletAddress  string `json:"walletAddress"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type checkoutResp struct {
	OrderID string `json:"orderId"`
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
}

// Checkout runs the session cart through the pipeline. Failure states
// come back 200 with state+reason: the order exists, the purchase didn't.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	wallet, ok := validate.Wallet(req.WalletAddress)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid walletAddress"})
	}
	key, ok := validate.IdempotencyKey(req.IdempotencyKey)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid idempotencyKey"})
	}

	o, err := h.Svc.Checkout(c.UserContext(), ensureSID(c), wallet, key)
	if err != nil {
		return fail(c, "checkout", err)
	}

	applog.Audit(c, "checkout", map[string]any{
		"order_id": o.ID,
		"state":    o.State.String(),
		"total":    o.TotalMinor,
	})
	return c.JSON(checkoutResp{OrderID: o.ID, State: o.State.String(), Reason: o.Reason})
}

// Cancel honors user cancellation; past authorization it runs the void
// flow, past capture it refuses.
func (h *CheckoutHandler) Cancel(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := h.Svc.Cancel(c.UserContext(), oid)
	if err != nil {
		return fail(c, "checkout.cancel", err)
	}
	applog.Audit(c, "checkout.cancel", map[string]any{"order_id": o.ID})
	return c.JSON(checkoutResp{OrderID: o.ID, State: o.State.String(), Reason: o.Reason})
}
