package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// ProjectSummary is one row of the project listing: the project plus the
// caller's effective role and grouped counts. Counts are filled by
// batched queries, never per row.
type ProjectSummary struct {
	Project        models.Project
	MyRole         string
	MemberCount    int64
	TaskCount      int64
	CompletedTasks int64
}

// ProjectStats aggregates a project's task and member figures in a single
// grouped query per table.
type ProjectStats struct {
	TotalTasks      int64
	TodoTasks       int64
	InProgressTasks int64
	DoneTasks       int64
	OverdueTasks    int64
	MemberCount     int64
}

func (s *Store) CreateProject(project *models.Project) error {
	return s.conn.Create(project).Error
}

func (s *Store) ProjectByID(id uint) (*models.Project, error) {
	var project models.Project

	if err := s.conn.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *Store) UpdateProjectFields(id uint, fields map[string]interface{}) error {
	return s.conn.Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) DeleteProject(id uint) error {
	return s.conn.Delete(&models.Project{}, id).Error
}

// ProjectSummaries lists the projects userID owns or participates in,
// newest first, with pagination.
func (s *Store) ProjectSummaries(userID uint, page, perPage int) ([]ProjectSummary, int64, error) {
	page, perPage = ClampPage(page, perPage)

	type projectRow struct {
		models.Project
		MemberRole *string
	}

	base := func() *gorm.DB {
		return s.conn.Table("projects").
			Select("projects.*, project_memberships.role AS member_role").
			Joins("LEFT JOIN project_memberships ON project_memberships.project_id = projects.id"+
				" AND project_memberships.user_id = ? AND project_memberships.deleted_at IS NULL", userID).
			Where("projects.deleted_at IS NULL").
			Where("projects.owner_id = ? OR project_memberships.id IS NOT NULL", userID)
	}

	var total int64

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []projectRow

	err := base().Order("projects.created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Scan(&rows).Error

	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ProjectSummary, 0, len(rows))
	ids := make([]uint, 0, len(rows))

	for _, row := range rows {
		role := types.RoleMember

		if row.Project.OwnerID == userID {
			role = types.RoleAdmin
		} else if row.MemberRole != nil {
			role = *row.MemberRole
		}

		summaries = append(summaries, ProjectSummary{Project: row.Project, MyRole: role})
		ids = append(ids, row.Project.ID)
	}

	if len(ids) == 0 {
		return summaries, total, nil
	}

	type countRow struct {
		ProjectID uint
		Total     int64
		Done      int64
	}

	var taskCounts []countRow

	err = s.conn.Table("tasks").
		Select("project_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", types.TaskDone).
		Where("project_id IN ? AND deleted_at IS NULL", ids).
		Group("project_id").
		Scan(&taskCounts).Error

	if err != nil {
		return nil, 0, err
	}

	var memberCounts []countRow

	err = s.conn.Table("project_memberships").
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ? AND deleted_at IS NULL", ids).
		Group("project_id").
		Scan(&memberCounts).Error

	if err != nil {
		return nil, 0, err
	}

	taskByProject := make(map[uint]countRow, len(taskCounts))

	for _, c := range taskCounts {
		taskByProject[c.ProjectID] = c
	}

	memberByProject := make(map[uint]int64, len(memberCounts))

	for _, c := range memberCounts {
		memberByProject[c.ProjectID] = c.Total
	}

	for i := range summaries {
		id := summaries[i].Project.ID
		summaries[i].TaskCount = taskByProject[id].Total
		summaries[i].CompletedTasks = taskByProject[id].Done
		summaries[i].MemberCount = memberByProject[id]
	}

	return summaries, total, nil
}

func (s *Store) ProjectStats(projectID uint) (*ProjectStats, error) {
	var stats ProjectStats

	err := s.conn.Table("tasks").
		Select("COUNT(*) AS total_tasks,"+
			" SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS todo_tasks,"+
			" SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS in_progress_tasks,"+
			" SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done_tasks,"+
			" SUM(CASE WHEN due_date < ? AND status != ? THEN 1 ELSE 0 END) AS overdue_tasks",
			types.TaskTodo, types.TaskInProgress, types.TaskDone, time.Now(), types.TaskDone).
		Where("project_id = ? AND deleted_at IS NULL", projectID).
		Scan(&stats).Error

	if err != nil {
		return nil, err
	}

	err = s.conn.Model(&models.ProjectMembership{}).
		Where("project_id = ?", projectID).
		Count(&stats.MemberCount).Error

	if err != nil {
		return nil, err
	}

	return &stats, nil
}
