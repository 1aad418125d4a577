package web

import (
	"errors"
	"strconv"

	"github.com/dukex/hl7autoct/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// retryAfterSeconds is advertised with every 503.
const retryAfterSeconds = 5

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType(services.CodeValidation).
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError maps service errors to problem documents. Only the
// ServiceError message reaches the caller.
func handleServiceError(c fiber.Ctx, err error) error {
	code := services.ErrorCode(err)
	detail := safeDetail(err)

	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType(code).
			WithDetail(detail)

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType(code).
			WithDetail(detail)

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, services.ErrInvalidOutputRecord):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType(services.CodeInvalidOutputRecord).
			WithDetail(detail)

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case services.IsUpstreamError(err):
		problem := problems.NewStatusProblem(503).
			WithInstance(c.Path()).
			WithType(services.CodeUpstreamUnavailable).
			WithDetail(detail)

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))

		return c.Status(fiber.StatusServiceUnavailable).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithDetail("unexpected error")

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

func safeDetail(err error) string {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Message != "" {
		return serviceErr.Message
	}

	return "request could not be completed"
}
