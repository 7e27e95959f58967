package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedProject(t *testing.T, conn *gorm.DB, ownerID uint, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, OwnerID: ownerID, Status: types.ProjectActive}
	require.NoError(t, conn.Create(project).Error)
	return project
}

func seedTask(t *testing.T, conn *gorm.DB, projectID, createdBy uint, status string) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:     "task",
		Status:    status,
		Priority:  types.PriorityMedium,
		ProjectID: projectID,
		CreatedBy: createdBy,
	}
	require.NoError(t, conn.Create(task).Error)
	return task
}

func TestProjectSummaries(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	owner := seedUser(t, conn, "owner@example.com")
	member := seedUser(t, conn, "member@example.com")
	outsider := seedUser(t, conn, "outsider@example.com")

	owned := seedProject(t, conn, owner.ID, "Owned")
	joined := seedProject(t, conn, outsider.ID, "Joined")
	seedProject(t, conn, outsider.ID, "Unrelated")

	require.NoError(t, conn.Create(&models.ProjectMembership{
		UserID: member.ID, ProjectID: joined.ID, Role: types.RoleMember,
	}).Error)
	require.NoError(t, conn.Create(&models.ProjectMembership{
		UserID: member.ID, ProjectID: owned.ID, Role: types.RoleAdmin,
	}).Error)

	seedTask(t, conn, owned.ID, owner.ID, types.TaskTodo)
	seedTask(t, conn, owned.ID, owner.ID, types.TaskDone)
	seedTask(t, conn, owned.ID, owner.ID, types.TaskDone)

	summaries, total, err := s.ProjectSummaries(owner.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Owned", summaries[0].Project.Name)
	assert.Equal(t, types.RoleAdmin, summaries[0].MyRole)
	assert.EqualValues(t, 3, summaries[0].TaskCount)
	assert.EqualValues(t, 2, summaries[0].CompletedTasks)
	assert.EqualValues(t, 1, summaries[0].MemberCount)

	summaries, total, err = s.ProjectSummaries(member.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, summaries, 2)

	roles := map[string]string{}
	for _, summary := range summaries {
		roles[summary.Project.Name] = summary.MyRole
	}
	assert.Equal(t, types.RoleAdmin, roles["Owned"])
	assert.Equal(t, types.RoleMember, roles["Joined"])

	summaries, total, err = s.ProjectSummaries(outsider.ID, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, summaries, 1)
}

func TestProjectStats(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	owner := seedUser(t, conn, "owner@example.com")
	member := seedUser(t, conn, "member@example.com")
	project := seedProject(t, conn, owner.ID, "Apollo")

	require.NoError(t, conn.Create(&models.ProjectMembership{
		UserID: member.ID, ProjectID: project.ID, Role: types.RoleMember,
	}).Error)

	seedTask(t, conn, project.ID, owner.ID, types.TaskTodo)
	seedTask(t, conn, project.ID, owner.ID, types.TaskInProgress)
	seedTask(t, conn, project.ID, owner.ID, types.TaskDone)
	seedTask(t, conn, project.ID, owner.ID, types.TaskDone)

	stats, err := s.ProjectStats(project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalTasks)
	assert.EqualValues(t, 1, stats.TodoTasks)
	assert.EqualValues(t, 1, stats.InProgressTasks)
	assert.EqualValues(t, 2, stats.DoneTasks)
	assert.EqualValues(t, 1, stats.MemberCount)
}

func TestUpdateAndDeleteProject(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	owner := seedUser(t, conn, "owner@example.com")
	project := seedProject(t, conn, owner.ID, "Apollo")

	err := s.UpdateProjectFields(project.ID, map[string]interface{}{
		"name":   "Artemis",
		"status": types.ProjectArchived,
	})
	require.NoError(t, err)

	updated, err := s.ProjectByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Artemis", updated.Name)
	assert.Equal(t, types.ProjectArchived, updated.Status)

	require.NoError(t, s.DeleteProject(project.ID))

	_, err = s.ProjectByID(project.ID)
	assert.True(t, store.IsNotFound(err))
}
