package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Project roles. Owners hold no membership row; role resolution treats
// them as admin.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectArchived  = "archived"
	ProjectCompleted = "completed"
)

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification types.
const (
	NotificationMemberAdded   = "member_added"
	NotificationMemberRemoved = "member_removed"
	NotificationRoleChanged   = "role_changed"
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskCompleted = "task_completed"
	NotificationCommentAdded  = "comment_added"
)

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
