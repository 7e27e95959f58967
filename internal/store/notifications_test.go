package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestNotificationLifecycle(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	user := seedUser(t, conn, "user@example.com")
	other := seedUser(t, conn, "other@example.com")

	require.NoError(t, s.CreateNotifications([]models.Notification{
		{UserID: user.ID, Type: types.NotificationTaskAssigned, Title: "Assigned"},
		{UserID: user.ID, Type: types.NotificationCommentAdded, Title: "Comment"},
		{UserID: other.ID, Type: types.NotificationMemberAdded, Title: "Welcome"},
	}))

	notifications, total, err := s.Notifications(user.ID, store.NotificationFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, notifications, 2)

	count, err := s.UnreadNotificationCount(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, s.MarkNotificationRead(notifications[0].ID, user.ID))

	unreadOnly, total, err := s.Notifications(user.ID, store.NotificationFilter{UnreadOnly: true}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, unreadOnly, 1)
	assert.False(t, unreadOnly[0].IsRead)

	// Marking another user's notification fails without touching the row.
	err = s.MarkNotificationRead(notifications[1].ID, other.ID)
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, s.MarkAllNotificationsRead(user.ID))

	count, err = s.UnreadNotificationCount(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	cleared, err := s.ClearReadNotifications(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cleared)

	_, total, err = s.Notifications(user.ID, store.NotificationFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestNotificationStats(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	user := seedUser(t, conn, "user@example.com")

	require.NoError(t, s.CreateNotifications([]models.Notification{
		{UserID: user.ID, Type: types.NotificationTaskAssigned, Title: "a"},
		{UserID: user.ID, Type: types.NotificationTaskAssigned, Title: "b"},
		{UserID: user.ID, Type: types.NotificationCommentAdded, Title: "c", IsRead: true},
	}))

	stats, err := s.NotificationStats(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Unread)
	assert.EqualValues(t, 3, stats.Today)
	assert.EqualValues(t, 2, stats.ByType[types.NotificationTaskAssigned])
	assert.EqualValues(t, 1, stats.ByType[types.NotificationCommentAdded])
}

func TestTypeFilter(t *testing.T) {
	conn := testutil.OpenDB(t)
	s := store.New(conn)

	user := seedUser(t, conn, "user@example.com")

	require.NoError(t, s.CreateNotifications([]models.Notification{
		{UserID: user.ID, Type: types.NotificationTaskAssigned, Title: "a"},
		{UserID: user.ID, Type: types.NotificationRoleChanged, Title: "b"},
	}))

	filtered, total, err := s.Notifications(user.ID, store.NotificationFilter{Type: types.NotificationRoleChanged}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Title)
}
