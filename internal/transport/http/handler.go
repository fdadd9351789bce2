// FILE: internal/transport/http/handler.go
// Package http exposes the match service over a JSON API.
package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chesscoach/internal/core"
	"chesscoach/internal/match"
)

const rateLimitRate = 10 // req/sec

// Handler routes HTTP requests to the match service
type Handler struct {
	svc *match.Service
}

func NewHandler(svc *match.Service) *Handler {
	return &Handler{svc: svc}
}

func NewFiberApp(svc *match.Service, devMode bool) *fiber.App {
	h := NewHandler(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimited,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/matches", h.CreateMatch)
	api.Get("/matches/:matchId", h.GetMatch)
	api.Post("/matches/:matchId/moves", h.MakeMove)
	api.Post("/matches/:matchId/restart", h.RestartMatch)
	api.Put("/matches/:matchId/level", h.SetLevel)
	api.Delete("/matches/:matchId", h.DeleteMatch)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.CodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.CodeInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.CodeMatchNotFound
		case fiber.StatusBadRequest:
			response.Code = core.CodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.CodeRateLimited
		}
	}

	return c.Status(code).JSON(response)
}

// serviceError maps match service errors onto API responses
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	resp := core.ErrorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, core.ErrMatchNotFound):
		status = fiber.StatusNotFound
		resp.Code = core.CodeMatchNotFound
	case errors.Is(err, core.ErrIllegalMove):
		resp.Code = core.CodeInvalidMove
	case errors.Is(err, core.ErrTurnInProgress):
		status = fiber.StatusConflict
		resp.Code = core.CodeTurnInProgress
	case errors.Is(err, core.ErrGameOver):
		resp.Code = core.CodeGameOver
	case errors.Is(err, core.ErrSessionFault):
		status = fiber.StatusConflict
		resp.Code = core.CodeSessionFault
	case errors.Is(err, core.ErrEngineUnavailable),
		errors.Is(err, core.ErrEngineFailure),
		errors.Is(err, core.ErrEngineTimeout):
		status = fiber.StatusServiceUnavailable
		resp.Code = core.CodeEngineFault
	default:
		resp.Code = core.CodeInvalidRequest
	}

	return c.Status(status).JSON(resp)
}

// Health check endpoint with storage status
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"matches": h.svc.MatchCount(),
		"storage": h.svc.StorageHealth(),
	})
}

// CreateMatch opens a new match at the requested difficulty level
func (h *Handler) CreateMatch(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateMatchRequest](c)
	if !ok {
		return nil
	}

	level := req.Level
	if level == 0 {
		level = core.DefaultPreset().Level
	}

	id, err := h.svc.CreateMatch(level, req.FEN)
	if err != nil {
		return serviceError(c, err)
	}

	resp, err := h.svc.Snapshot(c.Context(), id, -1)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetMatch returns match state, optionally long-polling until the
// ledger grows past moveCount
func (h *Handler) GetMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !requireUUID(c, matchID) {
		return nil
	}

	waitFor := -1
	if c.Query("wait", "false") == "true" {
		moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
		if err != nil {
			moveCount = -1
		}
		waitFor = moveCount
	}

	resp, err := h.svc.Snapshot(c.Context(), matchID, waitFor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// MakeMove submits the human move and starts the turn cycle
func (h *Handler) MakeMove(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !requireUUID(c, matchID) {
		return nil
	}

	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return nil
	}

	resp, err := h.svc.PlayMove(matchID, req.Move)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// RestartMatch resets a match to the starting position
func (h *Handler) RestartMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !requireUUID(c, matchID) {
		return nil
	}

	resp, err := h.svc.Restart(matchID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// SetLevel changes difficulty between turn cycles
func (h *Handler) SetLevel(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !requireUUID(c, matchID) {
		return nil
	}

	req, ok := validatedBody[core.SetLevelRequest](c)
	if !ok {
		return nil
	}

	resp, err := h.svc.SetLevel(matchID, req.Level)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// DeleteMatch ends a match and releases its engine
func (h *Handler) DeleteMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !requireUUID(c, matchID) {
		return nil
	}

	if err := h.svc.DeleteMatch(matchID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
