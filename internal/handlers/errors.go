package handlers

import (
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/auth"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// writeError maps a service error to its status and stable code. Details of internal
// errors are logged, never returned.
func writeError(c *fiber.Ctx, err error) error {
	code, status := services.ErrorCode(err)
	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Code: code, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: services.CodeValidation, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Code: services.CodeUnauthorized, Message: "Unauthorized",
	})
}

// currentUser resolves the caller or writes 401. ok is false when the response is done.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return uuid.Nil, false, unauthorized(c)
	}
	return userID, true, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, badRequest(c, "Invalid "+name)
	}
	return id, true, nil
}

// pagination reads limit and offset, capping limit at 100.
func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
