// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

const WalletLocalKey = "wallet_address"

// WalletContextMiddleware reads the wallet the Gateway authenticated from
// X-Wallet-Address and stores it, lowercased, in c.Locals(WalletLocalKey).
// Routes under /players/me require it.
func WalletContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet := services.NormalizeAddress(c.Get("X-Wallet-Address"))
		path := c.Path()

		if wallet != "" && !services.ValidAddress(wallet) {
			log.Printf("❌ [WALLET_CTX] Malformed wallet %q on %s", wallet, path)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-Wallet-Address must be a 0x-prefixed 20-byte hex address",
			})
		}
		if wallet == "" && strings.HasPrefix(path, "/players/me") {
			log.Printf("❌ [WALLET_CTX] X-Wallet-Address required but missing on %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Wallet-Address: request must come through gateway with a connected wallet",
			})
		}

		c.Locals(WalletLocalKey, wallet)
		return c.Next()
	}
}

// Wallet returns the wallet set by WalletContextMiddleware, or "".
func Wallet(c *fiber.Ctx) string {
	w, _ := c.Locals(WalletLocalKey).(string)
	return w
}
