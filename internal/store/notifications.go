package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

type NotificationFilter struct {
	UnreadOnly bool
	Type       string
}

type NotificationStats struct {
	Total    int64            `json:"total"`
	Unread   int64            `json:"unread"`
	Today    int64            `json:"today"`
	ThisWeek int64            `json:"this_week"`
	ByType   map[string]int64 `json:"by_type"`
}

func (s *Store) CreateNotification(notification *models.Notification) error {
	return s.conn.Create(notification).Error
}

// CreateNotifications inserts a batch in one statement.
func (s *Store) CreateNotifications(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return s.conn.Create(&notifications).Error
}

func (s *Store) NotificationFor(id, userID uint) (*models.Notification, error) {
	var notification models.Notification

	err := s.conn.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error

	if err != nil {
		return nil, err
	}

	return &notification, nil
}

func (s *Store) Notifications(userID uint, filter NotificationFilter, page, perPage int) ([]models.Notification, int64, error) {
	page, perPage = ClampPage(page, perPage)

	query := func() *gorm.DB {
		q := s.conn.Model(&models.Notification{}).Where("user_id = ?", userID)

		if filter.UnreadOnly {
			q = q.Where("is_read = ?", false)
		}

		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}

		return q
	}

	var total int64

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification

	err := query().Order("created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&notifications).Error

	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (s *Store) UnreadNotificationCount(userID uint) (int64, error) {
	var count int64

	err := s.conn.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error

	return count, err
}

func (s *Store) MarkNotificationRead(id, userID uint) error {
	result := s.conn.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (s *Store) MarkAllNotificationsRead(userID uint) error {
	return s.conn.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *Store) DeleteNotification(id, userID uint) error {
	result := s.conn.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ClearReadNotifications deletes every read notification and returns how
// many were removed.
func (s *Store) ClearReadNotifications(userID uint) (int64, error) {
	result := s.conn.Where("user_id = ? AND is_read = ?", userID, true).
		Delete(&models.Notification{})

	return result.RowsAffected, result.Error
}

func (s *Store) NotificationStats(userID uint) (*NotificationStats, error) {
	stats := &NotificationStats{ByType: make(map[string]int64)}

	base := s.conn.Model(&models.Notification{}).Where("user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	err := base.Session(&gorm.Session{}).Where("is_read = ?", false).Count(&stats.Unread).Error

	if err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -int(now.Weekday()))

	err = base.Session(&gorm.Session{}).Where("created_at >= ?", todayStart).Count(&stats.Today).Error

	if err != nil {
		return nil, err
	}

	err = base.Session(&gorm.Session{}).Where("created_at >= ?", weekStart).Count(&stats.ThisWeek).Error

	if err != nil {
		return nil, err
	}

	type typeRow struct {
		Type  string
		Count int64
	}

	var rows []typeRow

	err = s.conn.Model(&models.Notification{}).
		Select("type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
	}

	return stats, nil
}

func (s *Store) PreferenceFor(userID uint) (*models.NotificationPreference, error) {
	var preference models.NotificationPreference

	err := s.conn.Where("user_id = ?", userID).First(&preference).Error

	if err != nil {
		return nil, err
	}

	return &preference, nil
}

func (s *Store) SavePreference(preference *models.NotificationPreference) error {
	return s.conn.Save(preference).Error
}
