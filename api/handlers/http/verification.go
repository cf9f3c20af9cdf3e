package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/service"
)

// StartVerification enqueues a checksum verification run for a site and
// returns both the run and job identifiers.
func StartVerification(svcGetter ServiceGetter[*service.VerificationService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		var req service.StartVerificationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}

		res, err := srv.StartVerification(c.UserContext(), c.Params("id"), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSiteNotFound):
				return fiber.ErrNotFound
			case errors.Is(err, service.ErrVerificationInProgress):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			case errors.Is(err, service.ErrInvalidVerificationInput):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}

		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}

func GetSiteVerifications(svcGetter ServiceGetter[*service.VerificationService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		page, limit := pagination(c)

		res, err := srv.GetSiteVerifications(c.UserContext(), c.Params("id"), page, limit)
		if err != nil {
			if errors.Is(err, service.ErrSiteNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(res)
	}
}

// GetVerificationByID returns a run with its unauthorized file findings.
func GetVerificationByID(svcGetter ServiceGetter[*service.VerificationService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		verification, err := srv.GetVerificationByID(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrVerificationNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(verification)
	}
}
