package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=5000"`
	ParentID *uint  `json:"parent_id"`
}

func (h *TaskHandler) CreateComment(ctx *gin.Context) {
	userID, taskID, grant, ok := h.resolveTask(ctx)

	if !ok {
		return
	}

	var req CreateCommentRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if req.ParentID != nil {
		parent, err := h.Store.CommentByID(*req.ParentID)

		if err != nil || parent.TaskID != taskID {
			respondError(ctx, http.StatusBadRequest, "Parent comment does not belong to this task", "")
			return
		}
	}

	comment := models.TaskComment{
		TaskID:   taskID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	task := grant.Task

	// Notify the creator and the assignee, skipping the author.
	recipients := make(map[uint]bool)

	if task.CreatedBy != userID {
		recipients[task.CreatedBy] = true
	}

	if task.AssignedTo != nil && *task.AssignedTo != userID {
		recipients[*task.AssignedTo] = true
	}

	err := h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.CreateComment(&comment); err != nil {
			return err
		}

		notifications := make([]models.Notification, 0, len(recipients))

		for recipient := range recipients {
			notifications = append(notifications, models.Notification{
				UserID:    recipient,
				Type:      types.NotificationCommentAdded,
				Title:     "New comment on " + task.Title,
				Content:   req.Content,
				ProjectID: &task.ProjectID,
				TaskID:    &taskID,
			})
		}

		return tx.CreateNotifications(notifications)
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to create comment")
		respondInternal(ctx)
		return
	}

	for recipient := range recipients {
		h.Hub.NotifyUser(recipient)
	}

	actor, _ := utils.GetCurrentUser(ctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": store.CommentRecord{
			ID:         comment.ID,
			TaskID:     comment.TaskID,
			ParentID:   comment.ParentID,
			Content:    comment.Content,
			IsEdited:   comment.IsEdited,
			AuthorID:   userID,
			AuthorName: actor.Name,
			CreatedAt:  comment.CreatedAt,
		},
	})
}

func (h *TaskHandler) ListComments(ctx *gin.Context) {
	_, taskID, _, ok := h.resolveTask(ctx)

	if !ok {
		return
	}

	comments, err := h.Store.CommentsForTask(taskID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch comments")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}
