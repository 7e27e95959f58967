package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// TaskRecord is a task joined with its creator, assignee and project,
// flattened so listings need no follow-up queries.
type TaskRecord struct {
	ID           uint
	Title        string
	Description  string
	Status       string
	Priority     string
	ProjectID    uint
	ProjectName  string
	CreatedBy    uint
	CreatorName  string
	AssignedTo   *uint
	AssigneeName *string
	DueDate      *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// TaskFilter narrows task listings. Empty fields are ignored.
type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo uint
}

func (s *Store) CreateTask(task *models.Task) error {
	return s.conn.Create(task).Error
}

func (s *Store) TaskByID(id uint) (*models.Task, error) {
	var task models.Task

	if err := s.conn.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *Store) UpdateTaskFields(id uint, fields map[string]interface{}) error {
	return s.conn.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) DeleteTask(id uint) error {
	return s.conn.Delete(&models.Task{}, id).Error
}

func (s *Store) taskQuery() *gorm.DB {
	return s.conn.Table("tasks").
		Select("tasks.id, tasks.title, tasks.description, tasks.status, tasks.priority," +
			" tasks.project_id, projects.name AS project_name," +
			" tasks.created_by, creators.name AS creator_name," +
			" tasks.assigned_to, assignees.name AS assignee_name," +
			" tasks.due_date, tasks.completed_at, tasks.created_at").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Joins("JOIN users creators ON creators.id = tasks.created_by").
		Joins("LEFT JOIN users assignees ON assignees.id = tasks.assigned_to").
		Where("tasks.deleted_at IS NULL").
		Where("projects.deleted_at IS NULL")
}

func (s *Store) TasksForProject(projectID uint, filter TaskFilter, page, perPage int) ([]TaskRecord, int64, error) {
	page, perPage = ClampPage(page, perPage)

	query := func() *gorm.DB {
		q := s.taskQuery().Where("tasks.project_id = ?", projectID)

		if filter.Status != "" {
			q = q.Where("tasks.status = ?", filter.Status)
		}

		if filter.Priority != "" {
			q = q.Where("tasks.priority = ?", filter.Priority)
		}

		if filter.AssignedTo != 0 {
			q = q.Where("tasks.assigned_to = ?", filter.AssignedTo)
		}

		return q
	}

	var total int64

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []TaskRecord

	err := query().Order("tasks.created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Scan(&records).Error

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// TasksAssignedTo lists tasks assigned to userID across all projects.
func (s *Store) TasksAssignedTo(userID uint, page, perPage int) ([]TaskRecord, int64, error) {
	page, perPage = ClampPage(page, perPage)

	query := func() *gorm.DB {
		return s.taskQuery().Where("tasks.assigned_to = ?", userID)
	}

	var total int64

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []TaskRecord

	err := query().Order("tasks.created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Scan(&records).Error

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (s *Store) TaskRecordByID(id uint) (*TaskRecord, error) {
	var record TaskRecord

	err := s.taskQuery().Where("tasks.id = ?", id).Scan(&record).Error

	if err != nil {
		return nil, err
	}

	if record.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &record, nil
}
