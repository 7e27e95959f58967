package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

func (s *Store) CreateUser(user *models.User) error {
	return s.conn.Create(user).Error
}

func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User

	if err := s.conn.First(&user, id).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var user models.User

	if err := s.conn.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Store) UpdateUserFields(id uint, fields map[string]interface{}) error {
	return s.conn.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) TouchLastLogin(id uint) error {
	now := time.Now()
	return s.conn.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", &now).Error
}
