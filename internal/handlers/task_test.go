package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	projectID := env.createProject(t, alice, "Apollo")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), alice.Token, gin.H{
		"title": "Design the schema",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	task := decode(t, resp)["task"].(map[string]interface{})
	assert.Equal(t, "todo", task["status"])
	assert.Equal(t, "medium", task["priority"])
	assert.Nil(t, task["assigned_to"])
	assert.Nil(t, task["completed_at"])

	creator := task["created_by"].(map[string]interface{})
	assert.Equal(t, "Alice", creator["name"])
}

func TestCreateTaskRejectsNonMemberAssignee(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	mallory := env.signup(t, "Mallory", "mallory@example.com")
	projectID := env.createProject(t, alice, "Apollo")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), alice.Token, gin.H{
		"title":       "Sneaky",
		"assigned_to": mallory.ID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCreateTaskInvalidDueDate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	projectID := env.createProject(t, alice, "Apollo")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), alice.Token, gin.H{
		"title":    "Bad date",
		"due_date": "next tuesday",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	projectID := env.createProject(t, alice, "Apollo")
	taskID := env.createTask(t, alice, projectID, gin.H{"title": "Ship it"})

	path := fmt.Sprintf("/tasks/%d", taskID)

	resp := env.do(t, http.MethodPatch, path, alice.Token, gin.H{"status": "done"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	task := decode(t, resp)["task"].(map[string]interface{})
	assert.Equal(t, "done", task["status"])
	assert.NotNil(t, task["completed_at"])

	// Reopening clears the completion stamp.
	resp = env.do(t, http.MethodPatch, path, alice.Token, gin.H{"status": "todo"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	task = decode(t, resp)["task"].(map[string]interface{})
	assert.Equal(t, "todo", task["status"])
	assert.Nil(t, task["completed_at"])
}

func TestTaskUpdateNoChanges(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	projectID := env.createProject(t, alice, "Apollo")
	taskID := env.createTask(t, alice, projectID, gin.H{"title": "Ship it", "due_date": "2026-09-15"})

	// Resending current values, the due date included, is a no-op.
	resp := env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d", taskID), alice.Token, gin.H{
		"status":   "todo",
		"due_date": "2026-09-15",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "No changes to update", decode(t, resp)["message"])

	// And it leaves no trace in the activity log beyond the two creates.
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d/activity", projectID), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 2, decode(t, resp)["total"])
}

func TestTaskAssignAndUnassign(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "")
	taskID := env.createTask(t, alice, projectID, gin.H{"title": "Review"})

	path := fmt.Sprintf("/tasks/%d", taskID)

	resp := env.do(t, http.MethodPatch, path, alice.Token, gin.H{"assigned_to": bob.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	task := decode(t, resp)["task"].(map[string]interface{})
	assignee := task["assigned_to"].(map[string]interface{})
	assert.Equal(t, "Bob", assignee["name"])

	// Bob sees it under his tasks.
	resp = env.do(t, http.MethodGet, "/tasks/my", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, decode(t, resp)["total"])

	// Zero unassigns.
	resp = env.do(t, http.MethodPatch, path, alice.Token, gin.H{"assigned_to": 0})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	task = decode(t, resp)["task"].(map[string]interface{})
	assert.Nil(t, task["assigned_to"])
}

func TestTaskListFilters(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	projectID := env.createProject(t, alice, "Apollo")

	env.createTask(t, alice, projectID, gin.H{"title": "a", "priority": "high"})
	env.createTask(t, alice, projectID, gin.H{"title": "b", "status": "done"})
	env.createTask(t, alice, projectID, gin.H{"title": "c"})

	base := fmt.Sprintf("/projects/%d/tasks", projectID)

	resp := env.do(t, http.MethodGet, base+"?status=done", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, decode(t, resp)["total"])

	resp = env.do(t, http.MethodGet, base+"?priority=high", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, decode(t, resp)["total"])

	resp = env.do(t, http.MethodGet, base, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 3, decode(t, resp)["total"])
}

func TestTaskVisibilityFollowsProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	mallory := env.signup(t, "Mallory", "mallory@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	taskID := env.createTask(t, alice, projectID, gin.H{"title": "Secret"})

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), mallory.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Missing task looks the same as a forbidden one.
	resp = env.do(t, http.MethodGet, "/tasks/99999", mallory.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestMyTasksDropDeletedProjects(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "")
	env.createTask(t, alice, projectID, gin.H{"title": "Review", "assigned_to": bob.ID})

	resp := env.do(t, http.MethodGet, "/tasks/my", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.EqualValues(t, 1, decode(t, resp)["total"])

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d", projectID), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// Tasks of a deleted project disappear from the cross-project view.
	resp = env.do(t, http.MethodGet, "/tasks/my", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 0, decode(t, resp)["total"])
}

func TestTaskDeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")
	carol := env.signup(t, "Carol", "carol@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "member")
	env.addMember(t, alice, projectID, carol.ID, "member")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), bob.Token, gin.H{"title": "Bob's task"})
	require.Equal(t, http.StatusCreated, resp.Code)
	taskID := uint(decode(t, resp)["task"].(map[string]interface{})["id"].(float64))

	// A fellow member who is neither creator nor admin cannot delete.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), carol.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The creator can.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}
