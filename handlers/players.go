// handlers/players.go
package handlers

import (
	"log"

	"monadmons-arena/middleware"
	"monadmons-arena/models"
	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

type insertCardRequest struct {
	CardID      string             `json:"card_id"`
	AcquiredVia models.AcquiredVia `json:"acquired_via"`
}

type reassignRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SetupPlayerRoutes registers the ownership API. /players/me/* acts on the
// wallet from X-Wallet-Address; /players/:address/* and /owned-cards/* are
// the raw store operations clients use during settlement.
func SetupPlayerRoutes(app *fiber.App, svc *services.InventoryService) {
	inv := svc.Inventory
	players := app.Group("/players", middleware.WalletContextMiddleware())

	players.Get("/me/cards", func(c *fiber.Ctx) error {
		views, err := svc.Collection(c.UserContext(), middleware.Wallet(c))
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.JSON(fiber.Map{"cards": views})
	})

	players.Get("/me/daily", func(c *fiber.Ctx) error {
		status, err := inv.CanClaimDaily(c.UserContext(), middleware.Wallet(c))
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.JSON(status)
	})

	players.Post("/me/daily/claim", func(c *fiber.Ctx) error {
		card, err := svc.ClaimDailyCard(c.UserContext(), middleware.Wallet(c))
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.Status(fiber.StatusCreated).JSON(card)
	})

	players.Post("/me/starter", func(c *fiber.Ctx) error {
		card, err := svc.GiveStarterCard(c.UserContext(), middleware.Wallet(c))
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.Status(fiber.StatusCreated).JSON(card)
	})

	players.Get("/me/matches", func(c *fiber.Ctx) error {
		historian, ok := inv.(services.MatchHistorian)
		if !ok {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "match history not available"})
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		results, err := historian.MatchHistory(c.UserContext(), middleware.Wallet(c), limit)
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.JSON(fiber.Map{"matches": results})
	})

	players.Get("/:address/cards", func(c *fiber.Ctx) error {
		cards, err := inv.GetOwnedCards(c.UserContext(), c.Params("address"))
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		if cards == nil {
			cards = []models.OwnedCard{}
		}
		return c.JSON(fiber.Map{"cards": cards})
	})

	players.Post("/:address/cards", func(c *fiber.Ctx) error {
		var req insertCardRequest
		if err := c.BodyParser(&req); err != nil || req.CardID == "" {
			return badRequest(c, "card_id is required")
		}
		if _, ok := svc.Catalog.Get(req.CardID); !ok {
			return sendError(c, "PLAYERS", services.ErrCardNotFound)
		}
		if req.AcquiredVia == "" {
			req.AcquiredVia = models.AcquiredViaShop
		}
		oc, err := inv.InsertOwnedCard(c.UserContext(), req.CardID, c.Params("address"), req.AcquiredVia)
		if err != nil {
			return sendError(c, "PLAYERS", err)
		}
		return c.Status(fiber.StatusCreated).JSON(oc)
	})

	app.Post("/owned-cards/:id/reassign", func(c *fiber.Ctx) error {
		var req reassignRequest
		if err := c.BodyParser(&req); err != nil || req.From == "" || req.To == "" {
			return badRequest(c, "from and to are required")
		}
		if err := inv.ReassignOwner(c.UserContext(), c.Params("id"), req.From, req.To); err != nil {
			return sendError(c, "OWNED_CARDS", err)
		}
		log.Printf("🔁 [OWNED_CARDS] %s moved %s → %s", c.Params("id"), req.From, req.To)
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Post("/matches/:match_id/settlement", func(c *fiber.Ctx) error {
		var result models.MatchResult
		if err := c.BodyParser(&result); err != nil {
			return badRequest(c, "invalid match result")
		}
		result.MatchID = c.Params("match_id")
		if result.Result == "" {
			result.Result = "win"
		}
		first, err := inv.ClaimSettlement(c.UserContext(), result)
		if err != nil {
			return sendError(c, "SETTLEMENT", err)
		}
		return c.JSON(fiber.Map{"claimed": first})
	})
}

func SetupHealthRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
