package middleware

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/auth"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SanctionScope selects which penalties block a write.
type SanctionScope string

const (
	ScopePost    SanctionScope = "post"
	ScopeComment SanctionScope = "comment"
)

// SanctionChecker is the part of the penalty ledger the gate needs.
type SanctionChecker interface {
	CanPost(ctx context.Context, userID uuid.UUID) error
	CanComment(ctx context.Context, userID uuid.UUID) error
}

// RequireNotSanctioned refuses the request when the caller has a penalty in force for
// scope. Mount it after JWTProtected on routes that create posts or comments.
func RequireNotSanctioned(penalties SanctionChecker, scope SanctionScope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: services.CodeUnauthorized, Message: "Unauthorized",
			})
		}

		check := penalties.CanPost
		if scope == ScopeComment {
			check = penalties.CanComment
		}
		if err := check(c.UserContext(), userID); err != nil {
			code, status := services.ErrorCode(err)
			message := err.Error()
			if status >= fiber.StatusInternalServerError {
				slog.Error("sanction check failed", "user_id", userID, "error", err)
				message = "Internal server error"
			}
			return c.Status(status).JSON(dto.ErrorResponse{Error: true, Code: code, Message: message})
		}
		return c.Next()
	}
}
