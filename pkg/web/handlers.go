package web

import (
	"net/http"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const missingMessageDetail = "hl7_message is required and cannot be empty"

type APIHandlers struct {
	launcher  *services.Launcher
	resolver  *services.Resolver
	validator *validator.Validate
}

func NewAPIHandlers(
	launcher *services.Launcher,
	resolver *services.Resolver,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		launcher:  launcher,
		resolver:  resolver,
		validator: validator,
	}
}

// LaunchTransformation starts one pipeline run and returns the URLs to follow it.
func (h *APIHandlers) LaunchTransformation(c fiber.Ctx) error {
	var req LaunchTransformationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, missingMessageDetail)
	}

	result, err := h.launcher.Launch(c.Context(), services.LaunchRequest{HL7Message: req.HL7Message})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetTransformationReport answers a status poll, or redirects to an artifact
// when type is set and the run succeeded.
func (h *APIHandlers) GetTransformationReport(c fiber.Ctx) error {
	result, err := h.resolver.Resolve(c.Context(), services.ResolveRequest{
		Handle: models.ExecutionHandle(c.Query("executionArn")),
		Type:   c.Query("type"),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	if result.Kind == services.ResultRedirect {
		c.Set(fiber.HeaderLocation, result.Redirect.Location)

		return c.SendStatus(fiber.StatusFound)
	}

	return c.Status(fiber.StatusOK).JSON(result.Report)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	ledgerCheck, ledgerOk := h.resolver.HealthCheck(c.Context())

	response := HealthResponse{
		Status:  "unhealthy",
		Message: "hl7autoct API is unhealthy",
		Checkers: map[string]string{
			"ledger":  ledgerCheck,
			"catalog": "step catalog " + h.resolver.CatalogVersion(),
		},
		Timestamp: time.Now().UTC(),
	}
	httpStatus := http.StatusServiceUnavailable

	if ledgerOk {
		response.Status = "healthy"
		response.Message = "hl7autoct API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(response)
}
