package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/service"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

func CreateServer(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		var req service.ServerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}

		res, err := srv.CreateServer(c.UserContext(), req)
		if err != nil {
			if errors.Is(err, service.ErrInvalidServerInput) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			logger.ErrorContext(c.UserContext(), "create server failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func GetServerByID(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrBadRequest
		}

		res, err := srv.GetServerByID(c.UserContext(), int64(id))
		if err != nil {
			if errors.Is(err, service.ErrServerNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(res)
	}
}

func ListServers(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		page, limit := pagination(c)
		queries := c.Queries()

		res, err := srv.GetServers(c.UserContext(),
			extractServerFilters(queries), page, limit,
			serverSorts(extractSorts(queries))...)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(res)
	}
}

func UpdateServer(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrBadRequest
		}

		var req service.UpdateServerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}

		if err := srv.UpdateServer(c.UserContext(), int64(id), req); err != nil {
			if errors.Is(err, service.ErrServerNotFound) {
				return fiber.ErrNotFound
			}
			if errors.Is(err, service.ErrInvalidServerInput) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func DeleteServer(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrBadRequest
		}

		if err := srv.DeleteServer(c.UserContext(), int64(id)); err != nil {
			if errors.Is(err, service.ErrServerNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// TriggerServerScan enqueues a discovery job and answers 202 with its id.
func TriggerServerScan(svcGetter ServiceGetter[*service.ServerService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrBadRequest
		}

		res, err := srv.TriggerScan(c.UserContext(), int64(id))
		if err != nil {
			if errors.Is(err, service.ErrServerNotFound) {
				return fiber.ErrNotFound
			}
			if errors.Is(err, service.ErrNoScanPaths) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}
