package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mintmart/internal/services"
	"mintmart/internal/validate"
)

type ProductHandler struct {
	Catalog     *services.CatalogService
	Eligibility *services.EligibilityService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		return fail(c, "product.list", err)
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, err := h.Catalog.Product(pid)
	if err != nil {
		return fail(c, "product.detail", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	a, err := h.Catalog.CheckAvailability(pid)
	if err != nil {
		return fail(c, "availability.check", err)
	}
	return c.JSON(a)
}

// EligibilityPreview backs listing badges ("requires ape-club"). It may
// serve a briefly cached answer; checkout always re-checks ownership.
func (h *ProductHandler) EligibilityPreview(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	wallet, ok := validate.Wallet(c.Query("wallet"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid wallet"})
	}
	p, err := h.Catalog.Product(pid)
	if err != nil {
		return fail(c, "eligibility.preview", err)
	}
	eligible, err := h.Eligibility.Preview(c.UserContext(), wallet, p.NFTCollection, 1)
	if err != nil {
		return fail(c, "eligibility.preview", err)
	}
	return c.JSON(fiber.Map{
		"productId":  p.ID,
		"gated":      p.Gated(),
		"collection": p.NFTCollection,
		"eligible":   eligible,
	})
}
