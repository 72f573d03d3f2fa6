// handlers/bounty.go
package handlers

import (
	"bounty-marketplace-system/middleware"
	"bounty-marketplace-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService, submissionService *services.SubmissionService, settlementService *services.SettlementService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/bounties", bountyService.GetAllBounties)
	app.Get("/bounties/open", bountyService.GetOpenBounties)
	app.Get("/bounties/count", bountyService.GetBountiesCount)
	app.Get("/bounties/owner/:owner", bountyService.GetOwnerBounties)
	app.Get("/bounties/owner/:owner/count", bountyService.GetOwnerBountiesCount)
	app.Get("/bounties/user/:user", bountyService.GetUserBounties)
	app.Get("/bounties/user/:user/count", bountyService.GetUserBountiesCount)
	app.Get("/bounties/token/:token", bountyService.GetBountiesByToken)
	app.Get("/bounties/token/:token/count", bountyService.GetBountiesByTokenCount)
	app.Get("/bounties/status/:status", bountyService.GetBountiesByStatus)
	app.Get("/bounties/status/:status/count", bountyService.GetBountiesByStatusCount)
	app.Get("/bounties/:id", bountyService.GetBounty)
	app.Get("/bounties/:id/status", bountyService.GetBountyStatus)
	app.Get("/bounties/:id/winners", bountyService.GetBountyWinners)
	app.Get("/bounties/:id/applicants", bountyService.GetBountyApplicants)
	app.Get("/bounties/:id/submissions", bountyService.GetBountySubmissions)
	app.Get("/bounties/:id/payouts", bountyService.GetBountyPayouts)

	// Anyone may poke a bounty past its deadlines — idempotent housekeeping.
	app.Post("/bounties/:id/check-judging", settlementService.CheckJudging)

	// 🔐 Authenticated routes — require user context (wallet address).
	// Attached per-route so the public reads above (and any routes wired
	// after this file) stay open.
	userCtx := middleware.UserContextMiddleware()

	// Bounty lifecycle (owner)
	app.Post("/bounties", userCtx, bountyService.CreateBounty)
	app.Put("/bounties/:id", userCtx, bountyService.UpdateBounty)
	app.Delete("/bounties/:id", userCtx, bountyService.DeleteBounty)
	app.Post("/bounties/:id/winners", userCtx, settlementService.SelectWinners)

	// Submissions (talent)
	app.Post("/bounties/:id/apply", userCtx, submissionService.ApplyToBounty)
	app.Put("/bounties/:id/submission", userCtx, submissionService.UpdateSubmission)
	app.Get("/users/me/submissions", userCtx, submissionService.GetMySubmissions)
}
