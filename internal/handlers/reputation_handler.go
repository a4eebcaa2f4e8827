package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReputationHandler struct {
	reputationService *services.ReputationService
}

func NewReputationHandler(reputationService *services.ReputationService) *ReputationHandler {
	return &ReputationHandler{reputationService: reputationService}
}

func (h *ReputationHandler) MyAccount(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	return h.account(c, userID)
}

func (h *ReputationHandler) UserAccount(c *fiber.Ctx) error {
	userID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	return h.account(c, userID)
}

func (h *ReputationHandler) account(c *fiber.Ctx, userID uuid.UUID) error {
	account, err := h.reputationService.GetAccount(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(account, h.reputationService.EarnedToday(account)))
}

func (h *ReputationHandler) MyHistory(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := pagination(c)

	entries, total, err := h.reputationService.History(c.UserContext(), userID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PointHistoryResponse{
		Transactions: entries,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	})
}

// Earn is called by the content and engagement services, authenticated by service token.
func (h *ReputationHandler) Earn(c *fiber.Ctx) error {
	var req dto.EarnRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.reputationService.Earn(c.UserContext(), services.EarnInput{
		UserID:        req.UserID,
		Type:          models.PointType(req.Type),
		Points:        req.Points,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Description:   req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *ReputationHandler) Grant(c *fiber.Ctx) error {
	return h.adjust(c, h.reputationService.AdminGrant)
}

func (h *ReputationHandler) Deduct(c *fiber.Ctx) error {
	return h.adjust(c, h.reputationService.AdminDeduct)
}

type adjustFunc func(ctx context.Context, adminID, userID uuid.UUID, points int, reason string) (*models.PointTransaction, error)

func (h *ReputationHandler) adjust(c *fiber.Ctx, fn adjustFunc) error {
	adminID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	userID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	var req dto.AdjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := fn(c.UserContext(), adminID, userID, req.Points, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
