package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=admin member"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

func (h *ProjectHandler) ListMembers(ctx *gin.Context) {
	_, projectID, _, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	members, err := h.Store.Members(projectID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch members")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"members": members,
		"total":   len(members),
	})
}

func (h *ProjectHandler) AddMember(ctx *gin.Context) {
	userID, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	if grant.Role != types.RoleAdmin {
		respondError(ctx, http.StatusForbidden, "Only admins can add members", "")
		return
	}

	var req AddMemberRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if req.Role == "" {
		req.Role = types.RoleMember
	}

	target, err := h.Store.UserByID(req.UserID)

	if err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusNotFound, "User not found", "")
			return
		}
		h.Log.WithError(err).Error("Failed to fetch user")
		respondInternal(ctx)
		return
	}

	// The owner is implicitly admin; a membership row would be redundant.
	if target.ID == grant.Project.OwnerID {
		respondError(ctx, http.StatusConflict, "User is already a member", "")
		return
	}

	if _, err := h.Store.MembershipFor(projectID, target.ID); err == nil {
		respondError(ctx, http.StatusConflict, "User is already a member", "")
		return
	} else if !store.IsNotFound(err) {
		h.Log.WithError(err).Error("Failed to check membership")
		respondInternal(ctx)
		return
	}

	membership := models.ProjectMembership{
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      req.Role,
	}

	actor, _ := utils.GetCurrentUser(ctx)

	err = h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.AddMember(&membership); err != nil {
			return err
		}

		err := tx.CreateNotification(&models.Notification{
			UserID:    target.ID,
			Type:      types.NotificationMemberAdded,
			Title:     "You were added to " + grant.Project.Name,
			Content:   actor.Name + " added you to the project",
			ProjectID: &projectID,
		})

		if err != nil {
			return err
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    projectID,
			UserID:       userID,
			Action:       "add_member",
			ResourceType: "member",
			ResourceID:   target.ID,
			Details:      activityDetails(map[string]interface{}{"name": target.Name, "role": req.Role}),
		})
	})

	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(ctx, http.StatusConflict, "User is already a member", "")
			return
		}
		h.Log.WithError(err).Error("Failed to add member")
		respondInternal(ctx)
		return
	}

	h.Hub.NotifyUser(target.ID)
	go h.Notifier.ProjectEvent(grant.Project, "Member added", target.Name+" joined "+grant.Project.Name)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Member added successfully",
		"member": gin.H{
			"id":   target.ID,
			"name": target.Name,
			"role": membership.Role,
		},
	})
}

func (h *ProjectHandler) UpdateMemberRole(ctx *gin.Context) {
	userID, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	if grant.Role != types.RoleAdmin {
		respondError(ctx, http.StatusForbidden, "Only admins can change member roles", "")
		return
	}

	targetID, err := utils.IDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid user ID", "")
		return
	}

	if targetID == grant.Project.OwnerID {
		respondError(ctx, http.StatusForbidden, "Cannot change the project owner's role", "")
		return
	}

	var req UpdateMemberRequest

	if !bindJSON(ctx, &req) {
		return
	}

	membership, err := h.Store.MembershipFor(projectID, targetID)

	if err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusNotFound, "Membership not found", "")
			return
		}
		h.Log.WithError(err).Error("Failed to fetch membership")
		respondInternal(ctx)
		return
	}

	if membership.Role == req.Role {
		ctx.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	err = h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.UpdateMemberRole(projectID, targetID, req.Role); err != nil {
			return err
		}

		err := tx.CreateNotification(&models.Notification{
			UserID:    targetID,
			Type:      types.NotificationRoleChanged,
			Title:     "Your role in " + grant.Project.Name + " changed",
			Content:   "You are now " + req.Role,
			ProjectID: &projectID,
		})

		if err != nil {
			return err
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    projectID,
			UserID:       userID,
			Action:       "update_member_role",
			ResourceType: "member",
			ResourceID:   targetID,
			Details:      activityDetails(map[string]interface{}{"old": membership.Role, "new": req.Role}),
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to update member role")
		respondInternal(ctx)
		return
	}

	h.Hub.NotifyUser(targetID)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Member role updated successfully",
		"member":  gin.H{"id": targetID, "role": req.Role},
	})
}

func (h *ProjectHandler) RemoveMember(ctx *gin.Context) {
	userID, projectID, grant, ok := h.resolveProject(ctx)

	if !ok {
		return
	}

	targetID, err := utils.IDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid user ID", "")
		return
	}

	// Admins may remove anyone but the owner; a member may remove
	// themselves (leave the project).
	if grant.Role != types.RoleAdmin && targetID != userID {
		respondError(ctx, http.StatusForbidden, "Only admins can remove members", "")
		return
	}

	if targetID == grant.Project.OwnerID {
		respondError(ctx, http.StatusForbidden, "Cannot remove the project owner", "")
		return
	}

	if _, err := h.Store.MembershipFor(projectID, targetID); err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusNotFound, "Membership not found", "")
			return
		}
		h.Log.WithError(err).Error("Failed to fetch membership")
		respondInternal(ctx)
		return
	}

	err = h.Store.Transaction(func(tx *store.Store) error {
		if err := tx.RemoveMember(projectID, targetID); err != nil {
			return err
		}

		if targetID != userID {
			err := tx.CreateNotification(&models.Notification{
				UserID:    targetID,
				Type:      types.NotificationMemberRemoved,
				Title:     "You were removed from " + grant.Project.Name,
				ProjectID: &projectID,
			})

			if err != nil {
				return err
			}
		}

		return tx.LogActivity(&models.ActivityLog{
			ProjectID:    projectID,
			UserID:       userID,
			Action:       "remove_member",
			ResourceType: "member",
			ResourceID:   targetID,
		})
	})

	if err != nil {
		h.Log.WithError(err).Error("Failed to remove member")
		respondInternal(ctx)
		return
	}

	if targetID != userID {
		h.Hub.NotifyUser(targetID)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
