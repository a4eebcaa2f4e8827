package handlers

import (
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := pagination(c)

	notifications, total, err := h.notificationService.ListForUser(c.UserContext(), userID, c.QueryBool("unread", false), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Limit:         limit,
		Offset:        offset,
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	notificationID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}

	if err := h.notificationService.MarkRead(c.UserContext(), userID, notificationID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}
