package document

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "upload"
		}
		doctorID, _ := c.Locals("user_id").(string)
		url := "https://storage.example/" + body.FileName
		doc, err := svc.SaveDocument(c.Context(), doctorID, url, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"document":   doc,
			"expires_at": time.Now().Add(15 * time.Minute),
		})
	})

	r.Post("/:id/verify", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Verify(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		doctorID, _ := c.Locals("user_id").(string)
		docs, err := svc.ListForDoctor(c.Context(), doctorID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(docs)
	})
}
