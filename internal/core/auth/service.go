package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/models"
	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
)

// Service handles authentication flows
type Service struct {
	users repositories.UserRepo
	jwt   *JWTService
}

// NewService creates a new auth service
func NewService(users repositories.UserRepo, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Login verifies credentials and issues a token pair
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	userID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id in token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *models.User) (*LoginResponse, error) {
	claims := &TokenClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		Email:    user.Email,
		Role:     user.Role,
	}

	accessToken, expiresIn, err := s.jwt.GenerateAccessToken(claims)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.jwt.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User: &UserInfo{
			ID:       user.ID.String(),
			TenantID: user.TenantID.String(),
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}
