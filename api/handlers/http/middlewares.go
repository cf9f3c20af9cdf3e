package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/context"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

// setAppContext wraps the request context so every handler downstream sees
// the trace id and a context-aware logger.
func setAppContext(c *fiber.Ctx) error {
	traceID := ""
	if tid := c.Locals("traceID"); tid != nil {
		if tidStr, ok := tid.(string); ok {
			traceID = tidStr
		}
	}

	userCtx := context.NewAppContextWithTracing(c.UserContext(), traceID)

	contextLogger := logger.GetGlobalLogger()
	coreLogger := contextLogger.FromContext(userCtx)
	userCtx = contextLogger.SetInContext(userCtx, coreLogger)

	c.SetUserContext(userCtx)
	return c.Next()
}

// setTransaction opens a database transaction per request and commits or
// rolls back based on the response status.
func setTransaction(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tx := db.Begin()

		context.SetDB(c.UserContext(), tx, true)

		err := c.Next()

		if c.Response().StatusCode() >= 300 {
			return context.Rollback(c.UserContext())
		}

		if err := context.CommitOrRollback(c.UserContext(), true); err != nil {
			return err
		}

		return err
	}
}

// TraceMiddleware tags every request with an X-Trace-ID, generating one
// when the caller did not send one.
func TraceMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set("X-Trace-ID", traceID)

		c.Locals("traceID", traceID)

		return c.Next()
	}
}
