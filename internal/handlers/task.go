package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type TaskHandler struct {
	Deps
}

func NewTaskHandler(deps Deps) *TaskHandler {
	return &TaskHandler{Deps: deps}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Status      string `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *uint  `json:"assigned_to"`
	DueDate     string `json:"due_date" binding:"omitempty"`
}

// UpdateTaskRequest uses pointers so absent fields are left untouched.
// An AssignedTo of 0 unassigns; an empty DueDate clears the deadline.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Status      *string `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *uint   `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

func taskEntry(record store.TaskRecord) gin.H {
	entry := gin.H{
		"id":          record.ID,
		"title":       record.Title,
		"description": record.Description,
		"status":      record.Status,
		"priority":    record.Priority,
		"project": gin.H{
			"id":   record.ProjectID,
			"name": record.ProjectName,
		},
		"created_by": gin.H{
			"id":   record.CreatedBy,
			"name": record.CreatorName,
		},
		"assigned_to":  nil,
		"due_date":     record.DueDate,
		"completed_at": record.CompletedAt,
		"created_at":   record.CreatedAt,
	}

	if record.AssignedTo != nil && record.AssigneeName != nil {
		entry["assigned_to"] = gin.H{
			"id":   *record.AssignedTo,
			"name": *record.AssigneeName,
		}
	}

	return entry
}

func taskList(records []store.TaskRecord) []gin.H {
	list := make([]gin.H, 0, len(records))

	for _, record := range records {
		list = append(list, taskEntry(record))
	}

	return list
}

func parseDueDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}

	return nil, false
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}

func (h *TaskHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	projectID, err := utils.IDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID", "")
		return
	}

	grant, err := h.Eval.ResolveProjectRole(projectID, userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to resolve project role")
		respondInternal(ctx)
		return
	}

	if !grant.Allowed() {
		respondDenied(ctx)
		return
	}

	var req CreateTaskRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if req.Status == "" {
		req.Status = types.TaskTodo
	}

	if req.Priority == "" {
		req.Priority = types.PriorityMedium
	}

	dueDate, valid := parseDueDate(req.DueDate)

	if !valid {
		respondError(ctx, http.StatusBadRequest, "Invalid due_date format", "Use ISO format (YYYY-MM-DD or RFC3339)")
		return
	}

	if req.AssignedTo != nil {
		allowed, err := h.Eval.CanAssign(projectID, *req.AssignedTo)

		if err != nil {
			h.Log.WithError(err).Error("Failed to check assignee")
			respondInternal(ctx)
			return
		}

		if !allowed {
			respondError(ctx, http.StatusBadRequest, "Assigned user is not a member of this project", "")
			return
		}
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   projectID,
		CreatedBy:   userID,
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate,
	}

	if task.Status == types.TaskDone {
		now := time.Now()
		task.CompletedAt = &now
	}

	err = h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.CreateTask(&task); err != nil {
			return err
		}

		if task.AssignedTo != nil && *task.AssignedTo != userID {
			err := tx.CreateNotification(&models.Notification{
				UserID:    *task.AssignedTo,
				Type:      types.NotificationTaskAssigned,
				Title:     "You were assigned a task",
				Content:   task.Title,
				ProjectID: &projectID,
				TaskID:    &task.ID,
			})

			if err != nil {
				return err
			}
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    projectID,
			UserID:       userID,
			Action:       "create_task",
			ResourceType: "task",
			ResourceID:   task.ID,
			Details:      activityDetails(map[string]interface{}{"title": task.Title}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to create task")
		respondInternal(ctx)
		return
	}

	if task.AssignedTo != nil && *task.AssignedTo != userID {
		h.Hub.NotifyUser(*task.AssignedTo)
		go h.Notifier.ProjectEvent(grant.Project, "Task assigned", task.Title)
	}

	record, err := h.Store.TaskRecordByID(task.ID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to load created task")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    taskEntry(*record),
	})
}

func (h *TaskHandler) ListForProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	projectID, err := utils.IDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID", "")
		return
	}

	grant, err := h.Eval.ResolveProjectRole(projectID, userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to resolve project role")
		respondInternal(ctx)
		return
	}

	if !grant.Allowed() {
		respondDenied(ctx)
		return
	}

	filter := store.TaskFilter{
		Status:   ctx.Query("status"),
		Priority: ctx.Query("priority"),
	}

	if assignedTo := ctx.Query("assigned_to"); assignedTo != "" {
		if id, err := strconv.ParseUint(assignedTo, 10, 32); err == nil {
			filter.AssignedTo = uint(id)
		}
	}

	page, perPage := utils.PageParams(ctx)

	records, total, err := h.Store.TasksForProject(projectID, filter, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to list tasks")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tasks":    taskList(records),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *TaskHandler) MyTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	page, perPage := utils.PageParams(ctx)

	records, total, err := h.Store.TasksAssignedTo(userID, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to list my tasks")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tasks":    taskList(records),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *TaskHandler) Get(ctx *gin.Context) {
	_, _, grant, ok := h.resolveTask(ctx)

	if !ok {
		return
	}

	record, err := h.Store.TaskRecordByID(grant.Task.ID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to load task")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": taskEntry(*record)})
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	userID, taskID, grant, ok := h.resolveTask(ctx)

	if !ok {
		return
	}

	var req UpdateTaskRequest

	if !bindJSON(ctx, &req) {
		return
	}

	task := grant.Task
	fields := make(map[string]interface{})
	changes := make(map[string]interface{})

	if req.Title != nil && *req.Title != task.Title {
		changes["title"] = gin.H{"old": task.Title, "new": *req.Title}
		fields["title"] = *req.Title
	}

	if req.Description != nil && *req.Description != task.Description {
		changes["description"] = gin.H{"old": task.Description, "new": *req.Description}
		fields["description"] = *req.Description
	}

	if req.Priority != nil && *req.Priority != task.Priority {
		changes["priority"] = gin.H{"old": task.Priority, "new": *req.Priority}
		fields["priority"] = *req.Priority
	}

	statusChanged := req.Status != nil && *req.Status != task.Status

	if statusChanged {
		changes["status"] = gin.H{"old": task.Status, "new": *req.Status}
		fields["status"] = *req.Status

		// Entering done stamps the completion time; leaving clears it.
		if *req.Status == types.TaskDone {
			now := time.Now()
			fields["completed_at"] = &now
		} else if task.Status == types.TaskDone {
			fields["completed_at"] = nil
		}
	}

	var newAssignee *uint

	if req.AssignedTo != nil {
		current := uint(0)

		if task.AssignedTo != nil {
			current = *task.AssignedTo
		}

		if *req.AssignedTo != current {
			if *req.AssignedTo == 0 {
				changes["assigned_to"] = gin.H{"old": task.AssignedTo, "new": nil}
				fields["assigned_to"] = nil
			} else {
				allowed, err := h.Eval.CanAssign(task.ProjectID, *req.AssignedTo)

				if err != nil {
					h.Log.WithError(err).Error("Failed to check assignee")
					respondInternal(ctx)
					return
				}

				if !allowed {
					respondError(ctx, http.StatusBadRequest, "Assigned user is not a member of this project", "")
					return
				}

				changes["assigned_to"] = gin.H{"old": task.AssignedTo, "new": *req.AssignedTo}
				fields["assigned_to"] = *req.AssignedTo
				newAssignee = req.AssignedTo
			}
		}
	}

	if req.DueDate != nil {
		dueDate, valid := parseDueDate(*req.DueDate)

		if !valid {
			respondError(ctx, http.StatusBadRequest, "Invalid due_date format", "Use ISO format (YYYY-MM-DD or RFC3339)")
			return
		}

		if !sameTime(dueDate, task.DueDate) {
			changes["due_date"] = gin.H{"old": task.DueDate, "new": dueDate}
			fields["due_date"] = dueDate
		}
	}

	if len(fields) == 0 {
		ctx.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	completed := statusChanged && *req.Status == types.TaskDone

	err := h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.UpdateTaskFields(taskID, fields); err != nil {
			return err
		}

		if newAssignee != nil && *newAssignee != userID {
			err := tx.CreateNotification(&models.Notification{
				UserID:    *newAssignee,
				Type:      types.NotificationTaskAssigned,
				Title:     "You were assigned a task",
				Content:   task.Title,
				ProjectID: &task.ProjectID,
				TaskID:    &taskID,
			})

			if err != nil {
				return err
			}
		}

		if completed && task.CreatedBy != userID {
			err := tx.CreateNotification(&models.Notification{
				UserID:    task.CreatedBy,
				Type:      types.NotificationTaskCompleted,
				Title:     "Task completed",
				Content:   task.Title,
				ProjectID: &task.ProjectID,
				TaskID:    &taskID,
			})

			if err != nil {
				return err
			}
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    task.ProjectID,
			UserID:       userID,
			Action:       "update_task",
			ResourceType: "task",
			ResourceID:   taskID,
			Details:      activityDetails(map[string]interface{}{"changes": changes}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to update task")
		respondInternal(ctx)
		return
	}

	if newAssignee != nil && *newAssignee != userID {
		h.Hub.NotifyUser(*newAssignee)
	}

	if completed && task.CreatedBy != userID {
		h.Hub.NotifyUser(task.CreatedBy)
	}

	record, err := h.Store.TaskRecordByID(taskID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to load updated task")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    taskEntry(*record),
	})
}

func (h *TaskHandler) Delete(ctx *gin.Context) {
	userID, taskID, grant, ok := h.resolveTask(ctx)

	if !ok {
		return
	}

	// Deletion is restricted to the creator or a project admin.
	if grant.Task.CreatedBy != userID && grant.Role != types.RoleAdmin {
		respondError(ctx, http.StatusForbidden, "Only task creator or project admin can delete task", "")
		return
	}

	err := h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.DeleteTask(taskID); err != nil {
			return err
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    grant.Task.ProjectID,
			UserID:       userID,
			Action:       "delete_task",
			ResourceType: "task",
			ResourceID:   taskID,
			Details:      activityDetails(map[string]interface{}{"title": grant.Task.Title}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to delete task")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TaskHandler) resolveTask(ctx *gin.Context) (uint, uint, access.TaskGrant, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return 0, 0, access.TaskGrant{}, false
	}

	taskID, err := utils.IDParam(ctx, "task_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid task ID", "")
		return 0, 0, access.TaskGrant{}, false
	}

	grant, err := h.Eval.ResolveTaskRole(taskID, userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to resolve task role")
		respondInternal(ctx)
		return 0, 0, access.TaskGrant{}, false
	}

	if !grant.Allowed() {
		respondDenied(ctx)
		return 0, 0, access.TaskGrant{}, false
	}

	return userID, taskID, grant, true
}
