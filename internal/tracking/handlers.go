package tracking

import (
	"errors"
	"strconv"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// RegisterRoutes wires the session endpoints. Tracking actions are performed
// by the doctor on site, so start/check-in/points carry the doctor role gate.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, doctorOnly fiber.Handler) {
	r.Get("/history", authMiddleware, func(c *fiber.Ctx) error {
		doctorID, _ := c.Locals("user_id").(string)
		items, err := svc.History(c.Context(), doctorID, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	})

	r.Get("/:id/eligibility", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		view, err := svc.Eligibility(c.Context(), id, time.Now(), deviceFromQuery(c))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(view)
	})

	r.Post("/:id/tracking/start", authMiddleware, doctorOnly, func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		var req LocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.StartTracking(c.Context(), id, time.Now(), req.Point())
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(view)
	})

	r.Post("/:id/check-in", authMiddleware, doctorOnly, func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		var req LocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.CheckIn(c.Context(), id, time.Now(), req.Point())
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(view)
	})

	r.Post("/:id/points", authMiddleware, doctorOnly, func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		var req struct {
			LocationRequest
			AccuracyM  float64   `json:"accuracy_m"`
			RecordedAt time.Time `json:"recorded_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		point, err := svc.AddPoint(c.Context(), id, req.LocationRequest, req.AccuracyM, req.RecordedAt)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(point)
	})

	r.Get("/:id/summary", func(c *fiber.Ctx) error {
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		summary, err := svc.Summary(c.Context(), id, time.Now())
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(summary)
	})
}

func sessionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

func deviceFromQuery(c *fiber.Ctx) *geo.Point {
	lat, latOK := geo.ParseCoord(c.Query("lat"))
	lng, lngOK := geo.ParseCoord(c.Query("lng"))
	if !latOK || !lngOK {
		return nil
	}
	return &geo.Point{Lat: lat, Lng: lng}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrLocationUnknown):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrNotEligible):
		return fiber.StatusConflict
	case errors.Is(err, pgx.ErrNoRows):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
