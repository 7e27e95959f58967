package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

// MemberRecord is a membership joined with its user, flattened for
// serialization.
type MemberRecord struct {
	UserID   uint      `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (s *Store) AddMember(membership *models.ProjectMembership) error {
	return s.conn.Create(membership).Error
}

func (s *Store) MembershipFor(projectID, userID uint) (*models.ProjectMembership, error) {
	var membership models.ProjectMembership

	err := s.conn.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if err != nil {
		return nil, err
	}

	return &membership, nil
}

func (s *Store) Members(projectID uint) ([]MemberRecord, error) {
	var members []MemberRecord

	err := s.conn.Table("project_memberships").
		Select("users.id AS user_id, users.name, users.email,"+
			" project_memberships.role, project_memberships.created_at AS joined_at").
		Joins("JOIN users ON users.id = project_memberships.user_id AND users.deleted_at IS NULL").
		Where("project_memberships.project_id = ? AND project_memberships.deleted_at IS NULL", projectID).
		Order("project_memberships.created_at ASC").
		Scan(&members).Error

	if err != nil {
		return nil, err
	}

	return members, nil
}

func (s *Store) UpdateMemberRole(projectID, userID uint, role string) error {
	return s.conn.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

// RemoveMember hard-deletes the membership row. A soft delete would keep
// the (project, user) pair occupied in the unique index and block the
// user from ever rejoining.
func (s *Store) RemoveMember(projectID, userID uint) error {
	return s.conn.Unscoped().
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMembership{}).Error
}

// MemberUserIDs returns every user that should see project-wide
// notifications: the owner plus all members, minus excludeUserID.
func (s *Store) MemberUserIDs(projectID, excludeUserID uint) ([]uint, error) {
	var project models.Project

	if err := s.conn.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	var memberIDs []uint

	err := s.conn.Model(&models.ProjectMembership{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &memberIDs).Error

	if err != nil {
		return nil, err
	}

	seen := map[uint]bool{excludeUserID: true}
	ids := make([]uint, 0, len(memberIDs)+1)

	for _, id := range append(memberIDs, project.OwnerID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}
