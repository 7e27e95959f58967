package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	path := fmt.Sprintf("/projects/%d/members", projectID)

	resp := env.do(t, http.MethodPost, path, alice.Token, gin.H{"user_id": bob.ID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	member := decode(t, resp)["member"].(map[string]interface{})
	assert.Equal(t, "Bob", member["name"])
	assert.Equal(t, "member", member["role"])

	resp = env.do(t, http.MethodGet, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	payload := decode(t, resp)
	assert.EqualValues(t, 1, payload["total"])
}

func TestAddMemberConflicts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "")

	path := fmt.Sprintf("/projects/%d/members", projectID)

	// Twice the same user.
	resp := env.do(t, http.MethodPost, path, alice.Token, gin.H{"user_id": bob.ID})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// The owner already holds admin implicitly.
	resp = env.do(t, http.MethodPost, path, alice.Token, gin.H{"user_id": alice.ID})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Unknown target user.
	resp = env.do(t, http.MethodPost, path, alice.Token, gin.H{"user_id": 99999})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAddMemberRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")
	carol := env.signup(t, "Carol", "carol@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "member")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/members", projectID), bob.Token, gin.H{"user_id": carol.ID})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestUpdateMemberRole(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "member")

	path := fmt.Sprintf("/projects/%d/members/%d", projectID, bob.ID)

	resp := env.do(t, http.MethodPatch, path, alice.Token, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Same role again is a no-op.
	resp = env.do(t, http.MethodPatch, path, alice.Token, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "No changes to update", decode(t, resp)["message"])

	// Bob is admin now and may manage members himself.
	resp = env.do(t, http.MethodPatch, path, bob.Token, gin.H{"role": "member"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestOwnerRoleIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "admin")

	resp := env.do(t, http.MethodPatch, fmt.Sprintf("/projects/%d/members/%d", projectID, alice.ID), bob.Token, gin.H{"role": "member"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, alice.ID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRemoveMemberAndSelfLeave(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")
	carol := env.signup(t, "Carol", "carol@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "member")
	env.addMember(t, alice, projectID, carol.ID, "member")

	// A plain member cannot remove someone else.
	resp := env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, carol.ID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// But may leave on their own.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, bob.ID), bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Admins remove anyone but the owner.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, carol.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, carol.ID), alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRemovedMemberCanRejoin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice", "alice@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")

	projectID := env.createProject(t, alice, "Apollo")
	env.addMember(t, alice, projectID, bob.ID, "")

	resp := env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%d", projectID, bob.ID), bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Leaving frees the (project, user) pair; rejoining must not 409.
	env.addMember(t, alice, projectID, bob.ID, "")

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}
