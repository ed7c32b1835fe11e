package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/finstmt/fsg/pkg/observability"
)

const requestIDKey = "request_id"

// setupMiddleware configures global middleware for the Fiber app
func setupMiddleware(app *fiber.App, log logrus.FieldLogger) {
	// Recovery middleware catches panics
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// CORS middleware for cross-origin requests
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	// Tag every request with an id, log it and record the request metric
	app.Use(func(c fiber.Ctx) error {
		id := uuid.New().String()
		c.Locals(requestIDKey, id)
		c.Set("X-Request-ID", id)

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path
		observability.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		log.WithField("request_id", id).
			WithField("method", c.Method()).
			WithField("path", c.Path()).
			WithField("status", status).
			Debug("Handled request")

		return err
	})
}

// errorHandler provides consistent error responses
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if ok := errors.As(err, &fiberErr); ok {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
