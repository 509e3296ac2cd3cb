package server

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"github.com/priceworks/carprice/pkg/predict"
	"github.com/priceworks/carprice/pkg/schema"
)

// Predictor is the prediction surface the transport layer consumes.
// *predict.Service implements it.
type Predictor interface {
	Predict(ctx context.Context, v schema.FeatureVector) (*predict.Result, error)
}

// PredictHandler serves the prediction endpoint.
type PredictHandler struct {
	predictor Predictor
}

// NewPredictHandler creates the handler around an injected predictor.
func NewPredictHandler(p Predictor) *PredictHandler {
	return &PredictHandler{predictor: p}
}

// HandlePredict decodes the feature vector, runs the prediction
// service and formats the price as a comma-grouped 2-decimal string.
func (h *PredictHandler) HandlePredict(c *fiber.Ctx) error {
	var v schema.FeatureVector
	if err := c.BodyParser(&v); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	res, err := h.predictor.Predict(c.Context(), v)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "prediction failed",
		})
	}

	c.Set("X-Cache-Hit", "false")
	if res.Cached {
		c.Set("X-Cache-Hit", "true")
	}

	return c.JSON(fiber.Map{
		"predicted_price": humanize.FormatFloat("#,###.##", res.Price),
	})
}
