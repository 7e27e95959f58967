// Package access is the single source of truth for project and task
// authorization: given a principal and a resource it resolves whether the
// principal may act on it and with what effective role.
package access

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// Decision is the tri-state outcome of a role resolution. The evaluator
// never maps decisions to HTTP statuses; handlers do that.
type Decision int

const (
	// DecisionNotFound means the resource row does not exist. Fails closed.
	DecisionNotFound Decision = iota
	// DecisionDenied means the resource exists but the principal is
	// neither its owner nor a member.
	DecisionDenied
	// DecisionGranted means the principal may act with Role.
	DecisionGranted
)

type ProjectGrant struct {
	Decision Decision
	Project  *models.Project
	Role     string
}

type TaskGrant struct {
	Decision Decision
	Task     *models.Task
	Role     string
}

func (g ProjectGrant) Allowed() bool { return g.Decision == DecisionGranted }
func (g TaskGrant) Allowed() bool    { return g.Decision == DecisionGranted }

type Evaluator struct {
	conn *gorm.DB
}

func NewEvaluator(conn *gorm.DB) *Evaluator {
	return &Evaluator{conn: conn}
}

// ResolveProjectRole resolves the effective role of userID on projectID.
// Ownership always implies admin and is checked before any membership
// lookup; an owner needs no membership row.
func (e *Evaluator) ResolveProjectRole(projectID, userID uint) (ProjectGrant, error) {
	var project models.Project

	if err := e.conn.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectGrant{Decision: DecisionNotFound}, nil
		}
		return ProjectGrant{Decision: DecisionDenied}, err
	}

	if project.OwnerID == userID {
		return ProjectGrant{Decision: DecisionGranted, Project: &project, Role: types.RoleAdmin}, nil
	}

	var membership models.ProjectMembership

	err := e.conn.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectGrant{Decision: DecisionDenied}, nil
		}
		return ProjectGrant{Decision: DecisionDenied}, err
	}

	return ProjectGrant{Decision: DecisionGranted, Project: &project, Role: membership.Role}, nil
}

// ResolveTaskRole loads the task, then delegates to ResolveProjectRole on
// its project. Fails closed when the task does not exist.
func (e *Evaluator) ResolveTaskRole(taskID, userID uint) (TaskGrant, error) {
	var task models.Task

	if err := e.conn.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskGrant{Decision: DecisionNotFound}, nil
		}
		return TaskGrant{Decision: DecisionDenied}, err
	}

	grant, err := e.ResolveProjectRole(task.ProjectID, userID)

	if err != nil {
		return TaskGrant{Decision: DecisionDenied}, err
	}

	return TaskGrant{Decision: grant.Decision, Task: &task, Role: grant.Role}, nil
}

// RequireAdmin reports whether userID holds admin rights on projectID,
// either as owner or through an admin membership.
func (e *Evaluator) RequireAdmin(projectID, userID uint) (bool, error) {
	grant, err := e.ResolveProjectRole(projectID, userID)

	if err != nil {
		return false, err
	}

	return grant.Allowed() && grant.Role == types.RoleAdmin, nil
}

// CanAssign reports whether userID may be assigned tasks in projectID,
// i.e. is the owner or holds any membership.
func (e *Evaluator) CanAssign(projectID, userID uint) (bool, error) {
	grant, err := e.ResolveProjectRole(projectID, userID)

	if err != nil {
		return false, err
	}

	return grant.Allowed(), nil
}
