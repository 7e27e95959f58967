package store

import (
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

func (s *Store) CreateRefreshToken(token *models.RefreshToken) error {
	return s.conn.Create(token).Error
}

func (s *Store) RefreshTokenByID(tokenID string) (*models.RefreshToken, error) {
	var token models.RefreshToken

	if err := s.conn.Where("token_id = ?", tokenID).First(&token).Error; err != nil {
		return nil, err
	}

	return &token, nil
}

func (s *Store) RevokeRefreshToken(tokenID string) error {
	now := time.Now()

	return s.conn.Model(&models.RefreshToken{}).
		Where("token_id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", &now).Error
}

func (s *Store) RevokeUserRefreshTokens(userID uint) error {
	now := time.Now()

	return s.conn.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error
}
