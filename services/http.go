// services/http.go
package services

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"bounty-marketplace-system/engine"
)

// statusForCode maps the engine's typed errors onto HTTP statuses once, so
// every handler surfaces the specific error kind instead of a generic 500.
func statusForCode(code engine.Code) int {
	switch code {
	case engine.CodeOnlyOwner, engine.CodeNotAdmin, engine.CodeOwnerCannotApply:
		return fiber.StatusForbidden
	case engine.CodeBountyNotFound, engine.CodeSubmissionNotFound:
		return fiber.StatusNotFound
	case engine.CodeInactiveBounty, engine.CodeAlreadyApplied,
		engine.CodeBountyHasSubmissions, engine.CodeSameFeeAccount:
		return fiber.StatusConflict
	case engine.CodeInternalError:
		return fiber.StatusInternalServerError
	default:
		// validation failures: bad distribution, deadlines, winners, reward
		return fiber.StatusBadRequest
	}
}

// respondError renders an engine error as {"error": <name>, "code": <n>}.
// InternalError-class failures are logged loudly; ordinary guard rejections
// are the caller's problem and stay out of the logs.
func respondError(c *fiber.Ctx, err error) error {
	var de *engine.Error
	if errors.As(err, &de) {
		if de.Code == engine.CodeInternalError {
			log.Printf("🚨 [HTTP] internal error on %s: %v", c.Path(), err)
		}
		return c.Status(statusForCode(de.Code)).JSON(fiber.Map{
			"error": de.Name,
			"code":  de.Code,
		})
	}
	log.Printf("🚨 [HTTP] unexpected error on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "InternalError",
		"code":  engine.CodeInternalError,
	})
}

// callerID pulls the wallet address the gateway attached to the request.
func callerID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
