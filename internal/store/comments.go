package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

type CommentRecord struct {
	ID         uint      `json:"id"`
	TaskID     uint      `json:"task_id"`
	ParentID   *uint     `json:"parent_id"`
	Content    string    `json:"content"`
	IsEdited   bool      `json:"is_edited"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Store) CreateComment(comment *models.TaskComment) error {
	return s.conn.Create(comment).Error
}

func (s *Store) CommentByID(id uint) (*models.TaskComment, error) {
	var comment models.TaskComment

	if err := s.conn.First(&comment, id).Error; err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *Store) CommentsForTask(taskID uint) ([]CommentRecord, error) {
	var comments []CommentRecord

	err := s.conn.Table("task_comments").
		Select("task_comments.id, task_comments.task_id, task_comments.parent_id,"+
			" task_comments.content, task_comments.is_edited,"+
			" users.id AS author_id, users.name AS author_name, task_comments.created_at").
		Joins("JOIN users ON users.id = task_comments.user_id").
		Where("task_comments.task_id = ? AND task_comments.deleted_at IS NULL", taskID).
		Order("task_comments.created_at ASC").
		Scan(&comments).Error

	if err != nil {
		return nil, err
	}

	return comments, nil
}
