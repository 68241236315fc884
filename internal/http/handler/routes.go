package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"phoneapi/internal/hateoas"
	"phoneapi/internal/service"
)

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, store Pinger, phoneSvc service.PhoneService) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	phones := app.Group(hateoas.PhonesPath)
	phones.Get("/", ListPhones(phoneSvc))
	phones.Post("/", CreatePhone(phoneSvc))
	phones.Post("/snapshots", CreateSnapshot(phoneSvc))
	phones.Get("/snapshots/:name", GetSnapshot(phoneSvc))
	phones.Get("/:id", GetPhone(phoneSvc))
	phones.Put("/:id", ReplacePhone(phoneSvc))
	phones.Patch("/:id", PatchPhone(phoneSvc))
	phones.Delete("/:id", DeletePhone(phoneSvc))
}

// HealthCheck pings the backing store.
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
