package handlers

import (
	"monadmons-arena/models"
	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App, catalog *services.CatalogService) {
	app.Get("/catalog", func(c *fiber.Ctx) error {
		cards := catalog.All()
		if tier := c.Query("tier"); tier != "" {
			cards = catalog.ByTier(models.CardTier(tier))
		}
		return c.JSON(fiber.Map{"cards": cards, "tiers": models.TierConfigs})
	})

	app.Get("/catalog/:id", func(c *fiber.Ctx) error {
		card, ok := catalog.Get(c.Params("id"))
		if !ok {
			return sendError(c, "CATALOG", services.ErrCardNotFound)
		}
		return c.JSON(card)
	})
}
