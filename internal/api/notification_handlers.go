package api

import (
	"campuspaws/internal/database"
	"campuspaws/internal/notifications"
	"campuspaws/internal/util"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) ListNotifications(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)

	filter := notifications.ListFilter{
		Read:   queryOptionalBool(c, "read"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	if notificationType := c.Query("type"); notificationType != "" {
		filter.Type = util.Some(database.NotificationType(notificationType))
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priority = util.Some(database.Priority(priority))
	}

	result, err := s.notifications.ListForUser(c.Context(), identity.UserID, filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) UnreadCount(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)

	count, err := s.notifications.UnreadCount(c.Context(), identity.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unreadCount": count})
}

func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	identity, _ := currentIdentity(c)
	notification, err := s.notifications.MarkReadFor(c.Context(), id, identity.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notification)
}

func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)

	marked, remaining, err := s.notifications.MarkAllRead(c.Context(), identity.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"marked":    marked,
		"remaining": remaining,
	})
}

func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	identity, _ := currentIdentity(c)
	if err := s.notifications.DeleteFor(c.Context(), id, identity.UserID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) GetNotificationPreferences(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)

	prefs, err := s.notifications.Preferences(c.Context(), identity.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(prefs)
}

type updatePreferencesRequest struct {
	EmailEnabled     *bool `json:"emailEnabled"`
	TaskAlerts       *bool `json:"taskAlerts"`
	MedicalAlerts    *bool `json:"medicalAlerts"`
	VolunteerUpdates *bool `json:"volunteerUpdates"`
	SystemUpdates    *bool `json:"systemUpdates"`
}

func (s *Server) UpdateNotificationPreferences(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)

	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	prefs, err := s.notifications.UpdatePreferences(c.Context(), identity.UserID, notifications.UpdatePreferencesInput{
		EmailEnabled:     util.FromPtr(req.EmailEnabled),
		TaskAlerts:       util.FromPtr(req.TaskAlerts),
		MedicalAlerts:    util.FromPtr(req.MedicalAlerts),
		VolunteerUpdates: util.FromPtr(req.VolunteerUpdates),
		SystemUpdates:    util.FromPtr(req.SystemUpdates),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(prefs)
}
