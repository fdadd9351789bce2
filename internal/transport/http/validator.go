// FILE: internal/transport/http/validator.go
package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chesscoach/internal/core"
)

var validate = validator.New()

// validationMiddleware parses and validates request bodies by route,
// stashing the result in locals for the handler.
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	path := c.Path()
	var requestType interface{}

	switch {
	case strings.HasSuffix(path, "/matches") && method == fiber.MethodPost:
		requestType = &core.CreateMatchRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/level") && method == fiber.MethodPut:
		requestType = &core.SetLevelRequest{}
	case strings.HasSuffix(path, "/restart") && method == fiber.MethodPost:
		return c.Next() // No body
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.CodeInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		var details strings.Builder
		for _, err := range errs.(validator.ValidationErrors) {
			if details.Len() > 0 {
				details.WriteString("; ")
			}
			switch err.Tag() {
			case "required":
				details.WriteString(fmt.Sprintf("%s is required", err.Field()))
			case "min":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
				}
			case "max":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
				}
			case "omitempty": // Control tag, never errors
				continue
			default:
				details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.CodeInvalidRequest,
			Details: details.String(),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// validatedBody retrieves the middleware-validated request body. On
// failure the error response has already been written; the handler
// must bail out.
func validatedBody[T any](c *fiber.Ctx) (T, bool) {
	var zero T
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		_ = c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.CodeInternalError,
		})
		return zero, false
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.CodeInternalError,
		})
		return zero, false
	}
	return *body, true
}

// requireUUID writes a 400 and returns false on a malformed match ID.
func requireUUID(c *fiber.Ctx, id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid match ID format",
			Code:    core.CodeInvalidRequest,
			Details: "match ID must be a valid UUID",
		})
		return false
	}
	return true
}
