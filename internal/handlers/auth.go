package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type AuthHandler struct {
	Deps
}

func NewAuthHandler(deps Deps) *AuthHandler {
	return &AuthHandler{Deps: deps}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateMeRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !bindJSON(ctx, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.Store.UserByEmail(email); err == nil {
		respondError(ctx, http.StatusConflict, "Email already exists", "")
		return
	} else if !store.IsNotFound(err) {
		h.Log.WithError(err).Error("Failed to check existing user")
		respondInternal(ctx)
		return
	}

	passwordHash, err := h.Hasher.Hash(req.Password)

	if err != nil {
		h.Log.WithError(err).Error("Failed to hash password")
		respondInternal(ctx)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := h.Store.CreateUser(&user); err != nil {
		if store.IsUniqueViolation(err) {
			respondError(ctx, http.StatusConflict, "Email already exists", "")
			return
		}
		h.Log.WithError(err).Error("Failed to create user")
		respondInternal(ctx)
		return
	}

	h.Log.WithField("email", user.Email).Info("User registered")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": types.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !bindJSON(ctx, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Store.UserByEmail(email)

	if err != nil {
		if store.IsNotFound(err) {
			respondError(ctx, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}
		h.Log.WithError(err).Error("Failed to fetch user")
		respondInternal(ctx)
		return
	}

	if !user.IsActive || !h.Hasher.Compare(user.PasswordHash, req.Password) {
		respondError(ctx, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	pair, err := h.issueTokens(user.ID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to issue tokens")
		respondInternal(ctx)
		return
	}

	if err := h.Store.TouchLastLogin(user.ID); err != nil {
		h.Log.WithError(err).Warn("Failed to stamp last login")
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user": types.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	var req RefreshRequest

	if !bindJSON(ctx, &req) {
		return
	}

	claims, err := h.Tokens.VerifyRefresh(req.RefreshToken)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "Invalid token", "Please login again")
		return
	}

	record, err := h.Store.RefreshTokenByID(claims.ID)

	if err != nil || record.RevokedAt != nil {
		respondError(ctx, http.StatusUnauthorized, "Invalid token", "Please login again")
		return
	}

	if err := h.Store.RevokeRefreshToken(claims.ID); err != nil {
		h.Log.WithError(err).Error("Failed to revoke refresh token")
		respondInternal(ctx)
		return
	}

	pair, err := h.issueTokens(claims.UserID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to issue tokens")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Token refreshed",
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	if err := h.Store.RevokeUserRefreshTokens(userID); err != nil {
		h.Log.WithError(err).Error("Failed to revoke refresh tokens")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	user, err := h.Store.UserByID(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch user")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
			"bio":        user.Bio,
			"last_login": user.LastLoginAt,
			"created_at": user.CreatedAt,
		},
	})
}

func (h *AuthHandler) UpdateMe(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	var req UpdateMeRequest

	if !bindJSON(ctx, &req) {
		return
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}

	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}

	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}

	if len(fields) == 0 {
		respondError(ctx, http.StatusBadRequest, "No valid fields to update", "")
		return
	}

	if err := h.Store.UpdateUserFields(userID, fields); err != nil {
		h.Log.WithError(err).Error("Failed to update user")
		respondInternal(ctx)
		return
	}

	user, err := h.Store.UserByID(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to refresh user")
		respondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
			"bio":        user.Bio,
		},
	})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", "")
		return
	}

	var req ChangePasswordRequest

	if !bindJSON(ctx, &req) {
		return
	}

	user, err := h.Store.UserByID(userID)

	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch user")
		respondInternal(ctx)
		return
	}

	if !h.Hasher.Compare(user.PasswordHash, req.CurrentPassword) {
		respondError(ctx, http.StatusBadRequest, "Current password is incorrect", "")
		return
	}

	passwordHash, err := h.Hasher.Hash(req.NewPassword)

	if err != nil {
		h.Log.WithError(err).Error("Failed to hash password")
		respondInternal(ctx)
		return
	}

	err = h.Store.UpdateUserFields(userID, map[string]interface{}{"password_hash": passwordHash})

	if err != nil {
		h.Log.WithError(err).Error("Failed to update password")
		respondInternal(ctx)
		return
	}

	// Existing sessions stay valid until their refresh tokens expire;
	// revoking forces a fresh login everywhere else.
	if err := h.Store.RevokeUserRefreshTokens(userID); err != nil {
		h.Log.WithError(err).Warn("Failed to revoke refresh tokens after password change")
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) issueTokens(userID uint) (*tokenPair, error) {
	pair, err := h.Tokens.Issue(userID)

	if err != nil {
		return nil, err
	}

	err = h.Store.CreateRefreshToken(&models.RefreshToken{
		UserID:    userID,
		TokenID:   pair.RefreshTokenID,
		ExpiresAt: pair.RefreshExpiresAt,
	})

	if err != nil {
		return nil, err
	}

	return &tokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

type tokenPair struct {
	AccessToken  string
	RefreshToken string
}
