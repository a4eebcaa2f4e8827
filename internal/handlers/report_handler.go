package handlers

import (
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.reportService.Submit(c.UserContext(), services.SubmitReportInput{
		ReporterID:  userID,
		TargetType:  models.TargetType(req.TargetType),
		TargetID:    req.TargetID,
		Reason:      models.ReportReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Query("status", ""))
	if status != "" && !status.Valid() {
		return badRequest(c, "Invalid status")
	}
	limit, offset := pagination(c)

	reports, total, err := h.reportService.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.ReportListResponse{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	report, err := h.reportService.Get(c.UserContext(), reportID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) StartReview(c *fiber.Ctx) error {
	reviewerID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	reportID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	report, err := h.reportService.StartReview(c.UserContext(), reportID, reviewerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) Approve(c *fiber.Ctx) error {
	reviewerID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	reportID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	var req dto.ReviewReportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	report, err := h.reportService.Approve(c.UserContext(), reportID, reviewerID, req.Comment, req.ActionTaken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) Reject(c *fiber.Ctx) error {
	reviewerID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	reportID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	var req dto.ReviewReportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	report, err := h.reportService.Reject(c.UserContext(), reportID, reviewerID, req.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
