package application

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the application endpoints. Doctors apply, hospitals
// decide: approve and reject sit behind hospitalOnly so an applicant can
// never approve their own application.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, doctorOnly, hospitalOnly fiber.Handler) {
	r.Post("/", authMiddleware, doctorOnly, func(c *fiber.Ctx) error {
		var req struct {
			JobID string `json:"job_id"`
			Note  string `json:"note"`
		}
		if err := c.BodyParser(&req); err != nil || req.JobID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "job_id required")
		}
		doctorID, _ := c.Locals("user_id").(string)
		app, err := svc.Apply(c.Context(), req.JobID, doctorID, req.Note)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(app)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		doctorID, _ := c.Locals("user_id").(string)
		apps, err := svc.ListForDoctor(c.Context(), doctorID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(apps)
	})

	r.Get("/job/:jobID", authMiddleware, func(c *fiber.Ctx) error {
		apps, err := svc.ListForJob(c.Context(), c.Params("jobID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(apps)
	})

	r.Post("/:id/approve", authMiddleware, hospitalOnly, func(c *fiber.Ctx) error {
		result, err := svc.Approve(c.Context(), c.Params("id"), time.Now())
		if err != nil {
			if errors.Is(err, ErrNotApplied) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Post("/:id/reject", authMiddleware, hospitalOnly, func(c *fiber.Ctx) error {
		app, err := svc.Reject(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, ErrNotApplied) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(app)
	})
}
