package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/service"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

// CreateJob accepts a job submission and queues it for the worker.
func CreateJob(svcGetter ServiceGetter[*service.JobService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		var req service.CreateJobRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}

		res, err := srv.CreateJob(c.UserContext(), req)
		if err != nil {
			if errors.Is(err, service.ErrInvalidJobInput) || errors.Is(err, service.ErrUnknownJobKind) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			logger.ErrorContext(c.UserContext(), "create job failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetJobByID returns one job including its parsed params and result.
func GetJobByID(svcGetter ServiceGetter[*service.JobService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrBadRequest
		}

		job, err := srv.GetJobByID(c.UserContext(), int64(id))
		if err != nil {
			if errors.Is(err, service.ErrJobNotFound) {
				return fiber.ErrNotFound
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(job)
	}
}

// GetJobs lists jobs with filters, sorting and pagination.
func GetJobs(svcGetter ServiceGetter[*service.JobService]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		srv := svcGetter(c.UserContext())

		page, limit := pagination(c)
		queries := c.Queries()

		res, err := srv.GetJobs(c.UserContext(),
			extractJobFilters(queries), page, limit,
			jobSorts(extractSorts(queries))...)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(res)
	}
}
