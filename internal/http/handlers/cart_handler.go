package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mintmart/internal/services"
	"mintmart/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartLineReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return c.JSON(cv)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Add(ensureSID(c), pid, req.Qty); err != nil {
		return fail(c, "cart.add", err)
	}
	return h.View(c)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.UpdateQuantity(ensureSID(c), pid, req.Qty); err != nil {
		return fail(c, "cart.update", err)
	}
	return h.View(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Remove(ensureSID(c), pid); err != nil {
		return fail(c, "cart.remove", err)
	}
	return h.View(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(ensureSID(c)); err != nil {
		return fail(c, "cart.clear", err)
	}
	return h.View(c)
}
