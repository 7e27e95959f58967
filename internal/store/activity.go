package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type ActivityRecord struct {
	ID           uint      `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   uint      `json:"resource_id"`
	Details      string    `json:"details"`
	ActorID      uint      `json:"actor_id"`
	ActorName    string    `json:"actor_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) LogActivity(entry *models.ActivityLog) error {
	return s.conn.Create(entry).Error
}

func (s *Store) ActivityForProject(projectID uint, page, perPage int) ([]ActivityRecord, int64, error) {
	page, perPage = ClampPage(page, perPage)

	var total int64

	err := s.conn.Model(&models.ActivityLog{}).
		Where("project_id = ?", projectID).
		Count(&total).Error

	if err != nil {
		return nil, 0, err
	}

	var records []ActivityRecord

	err = s.conn.Table("activity_logs").
		Select("activity_logs.id, activity_logs.action, activity_logs.resource_type,"+
			" activity_logs.resource_id, activity_logs.details,"+
			" users.id AS actor_id, users.name AS actor_name, activity_logs.created_at").
		Joins("JOIN users ON users.id = activity_logs.user_id").
		Where("activity_logs.project_id = ? AND activity_logs.deleted_at IS NULL", projectID).
		Order("activity_logs.created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Scan(&records).Error

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
