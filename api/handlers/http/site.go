package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/service"
)

func ListSites(svcGetter ServiceGetter[*service.SiteService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		page, limit := pagination(c)

		res, err := srv.GetSites(c.UserContext(), extractSiteFilters(c), page, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(res)
	}
}

// GetSiteByID returns one site including its per-folder immutability
// status.
func GetSiteByID(svcGetter ServiceGetter[*service.SiteService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		site, err := srv.GetSiteByID(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrSiteNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(site)
	}
}

// LockSite enqueues an immutability lock job for the site.
func LockSite(svcGetter ServiceGetter[*service.SiteService]) fiber.Handler {
	return toggleImmutability(svcGetter, true)
}

// UnlockSite enqueues the inverse job.
func UnlockSite(svcGetter ServiceGetter[*service.SiteService]) fiber.Handler {
	return toggleImmutability(svcGetter, false)
}

// FixSitePermissions enqueues a permission-repair job. The body is
// optional; an empty request means a full non-dry run with ownership left
// alone.
func FixSitePermissions(svcGetter ServiceGetter[*service.SiteService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		var req service.FixPermissionsRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		res, err := srv.FixPermissions(c.UserContext(), c.Params("id"), req)
		if err != nil {
			if errors.Is(err, service.ErrSiteNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}

func toggleImmutability(svcGetter ServiceGetter[*service.SiteService], lock bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		var res *service.ToggleImmutabilityResponse
		var err error
		if lock {
			res, err = srv.Lock(c.UserContext(), c.Params("id"))
		} else {
			res, err = srv.Unlock(c.UserContext(), c.Params("id"))
		}

		if err != nil {
			if errors.Is(err, service.ErrSiteNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}
