package api

import "github.com/gofiber/fiber/v3"

// ErrReportNotFound is returned when no report definition has the requested id
var ErrReportNotFound = fiber.NewError(fiber.StatusNotFound, "report not found")

// ErrDatasetNotFound is returned when the requested dataset is not loaded
var ErrDatasetNotFound = fiber.NewError(fiber.StatusNotFound, "dataset not found")

// ErrDatasetRequired is returned when a render request omits the dataset parameter
var ErrDatasetRequired = fiber.NewError(fiber.StatusBadRequest, "dataset query parameter is required")

// ErrInvalidLTMParam is returned when the ltm parameter is not a boolean
var ErrInvalidLTMParam = fiber.NewError(fiber.StatusBadRequest, "ltm query parameter must be true or false")

// ErrInvalidYearParam is returned when the year parameter is not an integer
var ErrInvalidYearParam = fiber.NewError(fiber.StatusBadRequest, "year query parameter must be an integer")
