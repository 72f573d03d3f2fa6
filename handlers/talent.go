// handlers/talent.go
package handlers

import (
	"bounty-marketplace-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTalentRoutes(app *fiber.App, reputationService *services.ReputationService, walletService *services.WalletService) {
	app.Get("/talents/:wallet/profile", walletService.GetTalentProfile)
	app.Get("/talents/:wallet/reputation", reputationService.GetReputation)
	app.Get("/talents/:wallet/badges", reputationService.GetBadges)

	app.Get("/wallets/user/:user", walletService.GetUserWallets)
	app.Get("/wallets/:address", walletService.GetWallet)
}
