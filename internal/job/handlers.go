package job

import (
	"errors"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the job endpoints. Mutations are hospital-only;
// hospitalOnly is the role gate layered on top of authMiddleware.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, hospitalOnly fiber.Handler) {
	r.Post("/", authMiddleware, hospitalOnly, func(c *fiber.Ctx) error {
		var req Job
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.HospitalID == "" || req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "hospital_id and title required")
		}
		created, err := svc.CreateJob(c.Context(), req)
		if err != nil {
			if errors.Is(err, ErrLocationRequired) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/nearby", authMiddleware, func(c *fiber.Ctx) error {
		lat, latOK := geo.ParseCoord(c.Query("lat"))
		lng, lngOK := geo.ParseCoord(c.Query("lng"))
		if !latOK || !lngOK {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		radiusKm, ok := geo.ParseCoord(c.Query("radius_km"))
		if !ok || radiusKm <= 0 {
			radiusKm = 25
		}
		jobs, err := svc.Nearby(c.Context(), geo.Point{Lat: lat, Lng: lng}, radiusKm)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(jobs)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		j, err := svc.GetJob(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(j)
	})

	r.Patch("/:id", authMiddleware, hospitalOnly, func(c *fiber.Ctx) error {
		var patch Job
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		updated, err := svc.UpdateJob(c.Context(), c.Params("id"), patch)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(updated)
	})

	r.Delete("/:id", authMiddleware, hospitalOnly, func(c *fiber.Ctx) error {
		if err := svc.DeleteJob(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Job-detail proximity check: unknown device location is reported as a
	// nil distance, not as out-of-range.
	r.Get("/:id/distance", func(c *fiber.Ctx) error {
		var device *geo.Point
		lat, latOK := geo.ParseCoord(c.Query("lat"))
		lng, lngOK := geo.ParseCoord(c.Query("lng"))
		if latOK && lngOK {
			device = &geo.Point{Lat: lat, Lng: lng}
		}
		resp, err := svc.Distance(c.Context(), c.Params("id"), device)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(resp)
	})
}
