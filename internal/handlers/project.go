package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/datatypes"
)

type ProjectHandler struct {
	Deps
}

func NewProjectHandler(deps Deps) *ProjectHandler {
	return &ProjectHandler{Deps: deps}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// ProjectSettingsRequest carries the outbound webhook targets stored in
// Project.Settings. Empty URLs disable the corresponding webhook.
type ProjectSettingsRequest struct {
	SlackWebhookURL   string `json:"slack_webhook_url" binding:"omitempty,url,max=500"`
	DiscordWebhookURL string `json:"discord_webhook_url" binding:"omitempty,url,max=500"`
}

type UpdateProjectRequest struct {
	Name        *string                 `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string                 `json:"description" binding:"omitempty,max=2000"`
	Status      *string                 `json:"status" binding:"omitempty,oneof=active archived completed"`
	Settings    *ProjectSettingsRequest `json:"settings"`
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	OwnerID     uint   `json:"owner_id"`
}

func projectResponse(project *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
	}
}

func activityDetails(payload map[string]interface{}) datatypes.JSON {
	raw, err := json.Marshal(payload)

	if err != nil {
		return nil
	}

	return datatypes.JSON(raw)
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	var req CreateProjectRequest

	if !bindJSON(ctx, &req) {
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      types.ProjectActive,
		OwnerID:     userID,
	}

	err = h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.CreateProject(&project); err != nil {
			return err
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    project.ID,
			UserID:       userID,
			Action:       "create_project",
			ResourceType: "project",
			ResourceID:   project.ID,
			Details:      activityDetails(map[string]interface{}{"name": project.Name}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to create project")
		respondInternal(ctx)
		return
	}

	h.Log.WithFields(map[string]interface{}{
		"project_id": project.ID,
		"owner_id":   userID,
	}).Info("Project created")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": projectResponse(&project),
	})
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	page, perPage := utils.PageParams(ctx)

	summaries, total, err := h.Store.ProjectSummaries(userID, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to list projects")
		respondInternal(ctx)
		return
	}

	projects := make([]gin.H, 0, len(summaries))

	for _, summary := range summaries {
		projects = append(projects, gin.H{
			"id":                   summary.Project.ID,
			"name":                 summary.Project.Name,
			"description":          summary.Project.Description,
			"status":               summary.Project.Status,
			"owner_id":             summary.Project.OwnerID,
			"my_role":              summary.MyRole,
			"member_count":         summary.MemberCount,
			"task_count":           summary.TaskCount,
			"completed_task_count": summary.CompletedTasks,
			"created_at":           summary.Project.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *ProjectHandler) Get(ctx *gin.Context) {
	_, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	members, err := h.Store.Members(projectID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch members")
		respondInternal(ctx)
		return
	}

	page, perPage := utils.PageParams(ctx)

	tasks, totalTasks, err := h.Store.TasksForProject(projectID, store.TaskFilter{}, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch tasks")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": gin.H{
			"id":          grant.Project.ID,
			"name":        grant.Project.Name,
			"description": grant.Project.Description,
			"status":      grant.Project.Status,
			"owner_id":    grant.Project.OwnerID,
			"created_at":  grant.Project.CreatedAt,
		},
		"my_role": grant.Role,
		"members": members,
		"tasks":   taskList(tasks),
		"tasks_pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    totalTasks,
		},
	})
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
	userID, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	if grant.Role != types.RoleAdmin {
		respondError(ctx, http.StatusForbidden, "Only admins can update project", "")
		return
	}

	var req UpdateProjectRequest

	if !bindJSON(ctx, &req) {
		return
	}

	project := grant.Project
	fields := make(map[string]interface{})
	changes := make(map[string]interface{})

	if req.Name != nil && *req.Name != project.Name {
		changes["name"] = gin.H{"old": project.Name, "new": *req.Name}
		fields["name"] = *req.Name
	}

	if req.Description != nil && *req.Description != project.Description {
		changes["description"] = gin.H{"old": project.Description, "new": *req.Description}
		fields["description"] = *req.Description
	}

	if req.Status != nil && *req.Status != project.Status {
		changes["status"] = gin.H{"old": project.Status, "new": *req.Status}
		fields["status"] = *req.Status
	}

	if req.Settings != nil {
		raw, err := json.Marshal(req.Settings)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid settings", "")
			return
		}

		if !bytes.Equal(raw, []byte(project.Settings)) {
			changes["settings"] = gin.H{"updated": true}
			fields["settings"] = datatypes.JSON(raw)
		}
	}

	if len(fields) == 0 {
		ctx.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	err := h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.UpdateProjectFields(projectID, fields); err != nil {
			return err
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    projectID,
			UserID:       userID,
			Action:       "update_project",
			ResourceType: "project",
			ResourceID:   projectID,
			Details:      activityDetails(map[string]interface{}{"changes": changes}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to update project")
		respondInternal(ctx)
		return
	}

	updated, err := h.Store.ProjectByID(projectID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to refresh project")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": projectResponse(updated),
		"changes": changes,
	})
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
	userID, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	if grant.Project.OwnerID != userID {
		respondError(ctx, http.StatusForbidden, "Only project owner can delete the project", "")
		return
	}

	if err := h.Store.DeleteProject(projectID); err != nil {
		h.Log.WithError(err).Error("Failed to delete project")
		respondInternal(ctx)
		return
	}

	h.Log.WithField("project_id", projectID).Info("Project deleted")

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (h *ProjectHandler) Stats(ctx *gin.Context) {
	_, projectID, _, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	stats, err := h.Store.ProjectStats(projectID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch stats")
		respondInternal(ctx)
		return
	}

	completionRate := 0.0

	if stats.TotalTasks > 0 {
		completionRate = float64(stats.DoneTasks) / float64(stats.TotalTasks) * 100
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tasks": gin.H{
			"total":       stats.TotalTasks,
			"todo":        stats.TodoTasks,
			"in_progress": stats.InProgressTasks,
			"done":        stats.DoneTasks,
			"overdue":     stats.OverdueTasks,
		},
		"members":         stats.MemberCount,
		"completion_rate": completionRate,
	})
}

func (h *ProjectHandler) Activity(ctx *gin.Context) {
	_, projectID, _, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	page, perPage := utils.PageParams(ctx)

	records, total, err := h.Store.ActivityForProject(projectID, page, perPage)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch activity")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"activity": records,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// resolveProject authenticates, parses :project_id and resolves the
// caller's grant. Replies and returns ok=false on any failure.
func (h *ProjectHandler) resolveProject(ctx *gin.Context) (uint, uint, access.ProjectGrant, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return 0, 0, access.ProjectGrant{}, false
	}

	projectID, err := utils.IDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID", "")
		return 0, 0, access.ProjectGrant{}, false
	}

	grant, err := h.Eval.ResolveProjectRole(projectID, userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to resolve project role")
		respondInternal(ctx)
		return 0, 0, access.ProjectGrant{}, false
	}

	if !grant.Allowed() {
		respondDenied(ctx)
		return 0, 0, access.ProjectGrant{}, false
	}

	return userID, projectID, grant, true
}
