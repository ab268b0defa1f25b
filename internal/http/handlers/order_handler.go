package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mintmart/internal/repos"
	"mintmart/internal/validate"
)

type OrderHandler struct {
	Repo *repos.OrderRepo
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := h.Repo.Get(oid)
	if err != nil {
		return fail(c, "order.view", err)
	}
	return c.JSON(o)
}

// History lists orders placed by a wallet, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	wallet, ok := validate.Wallet(c.Query("wallet"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid wallet"})
	}
	orders, err := h.Repo.ListByWallet(wallet)
	if err != nil {
		return fail(c, "order.history", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}
