package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PenaltyHandler struct {
	penaltyService *services.PenaltyService
	sweeper        *services.PenaltySweeper
}

func NewPenaltyHandler(penaltyService *services.PenaltyService, sweeper *services.PenaltySweeper) *PenaltyHandler {
	return &PenaltyHandler{penaltyService: penaltyService, sweeper: sweeper}
}

func (h *PenaltyHandler) penaltyList(c *fiber.Ctx, userID uuid.UUID) error {
	activeOnly := c.QueryBool("active", false)
	penalties, err := h.penaltyService.ListForUser(c.UserContext(), userID, activeOnly)
	if err != nil {
		return writeError(c, err)
	}

	now := time.Now().UTC()
	out := make([]dto.PenaltyResponse, len(penalties))
	for i, p := range penalties {
		out[i] = dto.NewPenaltyResponse(p, now)
	}
	return c.JSON(fiber.Map{"penalties": out})
}

// MyPenalties lists the caller's own penalties.
func (h *PenaltyHandler) MyPenalties(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	return h.penaltyList(c, userID)
}

func (h *PenaltyHandler) UserPenalties(c *fiber.Ctx) error {
	userID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	return h.penaltyList(c, userID)
}

// Sanctions answers the posting/commenting gate for other services.
func (h *PenaltyHandler) Sanctions(c *fiber.Ctx) error {
	userID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	scope := c.Query("scope", "post")
	var types []models.PenaltyType
	switch scope {
	case "post":
		types = models.PostingBlockers
	case "comment":
		types = models.CommentingBlockers
	default:
		return badRequest(c, "scope must be post or comment")
	}

	sanctioned, err := h.penaltyService.HasActivePenaltyOfTypes(c.UserContext(), userID, types)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SanctionResponse{UserID: userID, Scope: scope, Sanctioned: sanctioned})
}

func (h *PenaltyHandler) Apply(c *fiber.Ctx) error {
	adminID, ok, err := currentUser(c)
	if !ok {
		return err
	}

	var req dto.ApplyPenaltyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := services.ApplyPenaltyInput{
		UserID:    req.UserID,
		Type:      models.PenaltyType(req.Type),
		Reason:    req.Reason,
		GrantedBy: &adminID,
		ReportID:  req.ReportID,
	}
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil {
			return badRequest(c, "Invalid duration")
		}
		in.Duration = &d
	}

	penalty, err := h.penaltyService.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPenaltyResponse(*penalty, penalty.StartsAt))
}

func (h *PenaltyHandler) Expire(c *fiber.Ctx) error {
	adminID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	penaltyID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	penalty, err := h.penaltyService.Expire(c.UserContext(), penaltyID, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPenaltyResponse(*penalty, time.Now().UTC()))
}

// Sweep runs one penalty sweep immediately.
func (h *PenaltyHandler) Sweep(c *fiber.Ctx) error {
	expired, err := h.sweeper.SweepNow(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SweepResponse{Expired: expired})
}
