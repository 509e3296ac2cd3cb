// Package server wires the HTTP transport around the prediction
// service: routing, auth header checks, rate limiting and response
// formatting. The prediction service itself is transport-agnostic.
package server

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Options configures the HTTP app.
type Options struct {
	// APIKey is the expected api-key header value.
	APIKey string

	// Tokens validates the token header.
	Tokens TokenValidator

	// Limiter is optional; nil disables rate limiting.
	Limiter *RateLimiter
}

// New builds the fiber app. Both credentials must pass before a
// request reaches the prediction service.
func New(predictor Predictor, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "carprice",
	})

	app.Use(logger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": os.Getenv("APP_VERSION"),
		})
	})

	handler := NewPredictHandler(predictor)

	v1 := app.Group("/v1", requireAPIKey(opts.APIKey), requireToken(opts.Tokens))
	if opts.Limiter != nil {
		v1.Use(opts.Limiter.Middleware())
	}
	v1.Post("/predict", handler.HandlePredict)

	return app
}
