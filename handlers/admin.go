// handlers/admin.go
package handlers

import (
	"bounty-marketplace-system/middleware"
	"bounty-marketplace-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	admin := app.Group("/admin", middleware.UserContextMiddleware())

	admin.Get("/config", adminService.GetConfig)
	admin.Put("/config/admin", adminService.UpdateAdmin)
	admin.Put("/config/fee-account", adminService.UpdateFeeAccount)
}
