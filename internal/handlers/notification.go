package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/datatypes"
)

type NotificationHandler struct {
	Deps
}

func NewNotificationHandler(deps Deps) *NotificationHandler {
	return &NotificationHandler{Deps: deps}
}

type UpdateSettingsRequest struct {
	EmailNotifications *bool           `json:"email_notifications"`
	PushNotifications  *bool           `json:"push_notifications"`
	NotificationTypes  map[string]bool `json:"notification_types"`
}

var defaultNotificationTypes = map[string]bool{
	"member_added":   true,
	"member_removed": true,
	"role_changed":   true,
	"task_assigned":  true,
	"task_completed": true,
	"comment_added":  true,
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	unreadOnly, _ := strconv.ParseBool(ctx.DefaultQuery("unread_only", "false"))

	filter := store.NotificationFilter{
		UnreadOnly: unreadOnly,
		Type:       ctx.Query("type"),
	}

	page, perPage := utils.PageParams(ctx)

	notifications, total, err := h.Store.Notifications(userID, filter, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to list notifications")
		respondInternal(ctx)
		return
	}

	unread, err := h.Store.UnreadNotificationCount(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to count unread notifications")
		respondInternal(ctx)
		return
	}

	list := make([]gin.H, 0, len(notifications))

	for _, notification := range notifications {
		list = append(list, gin.H{
			"id":         notification.ID,
			"type":       notification.Type,
			"title":      notification.Title,
			"content":    notification.Content,
			"is_read":    notification.IsRead,
			"project_id": notification.ProjectID,
			"task_id":    notification.TaskID,
			"created_at": notification.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"total":         total,
		"unread_count":  unread,
		"page":          page,
		"per_page":      perPage,
	})
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	id, err := utils.IDParam(ctx, "notification_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid notification ID", "")
		return
	}

	if err := h.Store.MarkNotificationRead(id, userID); err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusNotFound, "Notification not found", "")
			return
		}
		h.Log.WithError(err).Error("Failed to mark notification read")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	if err := h.Store.MarkAllNotificationsRead(userID); err != nil {
		h.Log.WithError(err).Error("Failed to mark notifications read")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	id, err := utils.IDParam(ctx, "notification_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid notification ID", "")
		return
	}

	if err := h.Store.DeleteNotification(id, userID); err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusNotFound, "Notification not found", "")
			return
		}
		h.Log.WithError(err).Error("Failed to delete notification")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (h *NotificationHandler) ClearRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	cleared, err := h.Store.ClearReadNotifications(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to clear notifications")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Read notifications cleared",
		"cleared": cleared,
	})
}

func (h *NotificationHandler) Stats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	stats, err := h.Store.NotificationStats(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch notification stats")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *NotificationHandler) GetSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	preference, err := h.Store.PreferenceFor(userID)

	if err != nil {
		if store.IsNotFound(err) {
			ctx.JSON(http.StatusOK, gin.H{
				"email_notifications": true,
				"push_notifications":  true,
				"notification_types":  defaultNotificationTypes,
			})
			return
		}
		h.Log.WithError(err).Error("Failed to fetch settings")
		respondInternal(ctx)
		return
	}

	notificationTypes := defaultNotificationTypes

	if len(preference.NotificationTypes) > 0 {
		parsed := make(map[string]bool)

		if err := json.Unmarshal(preference.NotificationTypes, &parsed); err == nil {
			notificationTypes = parsed
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"email_notifications": preference.EmailNotifications,
		"push_notifications":  preference.PushNotifications,
		"notification_types":  notificationTypes,
	})
}

func (h *NotificationHandler) UpdateSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	var req UpdateSettingsRequest

	if !bindJSON(ctx, &req) {
		return
	}

	preference, err := h.Store.PreferenceFor(userID)

	if err != nil {
		if !store.IsNotFound(err) {
			h.Log.WithError(err).Error("Failed to fetch settings")
			respondInternal(ctx)
			return
		}

		preference = &models.NotificationPreference{
			UserID:             userID,
			EmailNotifications: true,
			PushNotifications:  true,
		}
	}

	if req.EmailNotifications != nil {
		preference.EmailNotifications = *req.EmailNotifications
	}

	if req.PushNotifications != nil {
		preference.PushNotifications = *req.PushNotifications
	}

	if req.NotificationTypes != nil {
		raw, err := json.Marshal(req.NotificationTypes)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid notification_types", "")
			return
		}

		preference.NotificationTypes = datatypes.JSON(raw)
	}

	if err := h.Store.SavePreference(preference); err != nil {
		h.Log.WithError(err).Error("Failed to save settings")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}

// Stream upgrades to a websocket that receives refresh pushes whenever a
// notification is created for the caller.
func (h *NotificationHandler) Stream(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	h.Hub.Serve(ctx.Writer, ctx.Request, userID)
}
