package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/iai-group/arxivdigest-go/internal/platform/auth"
	"github.com/iai-group/arxivdigest-go/modules/operator/model"
	"github.com/iai-group/arxivdigest-go/modules/operator/ports"
)

// AuthService handles operator authentication business logic.
type AuthService struct {
	operatorRepo  ports.OperatorRepository
	tokenRepo     ports.RefreshTokenRepository
	jwtManager    *auth.JWTManager
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewAuthService creates a new operator auth service.
func NewAuthService(
	operatorRepo ports.OperatorRepository,
	tokenRepo ports.RefreshTokenRepository,
	jwtManager *auth.JWTManager,
	accessExpiry time.Duration,
	refreshExpiry time.Duration,
) *AuthService {
	return &AuthService{
		operatorRepo:  operatorRepo,
		tokenRepo:     tokenRepo,
		jwtManager:    jwtManager,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Register provisions a new operator account.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.OperatorDTO, *model.AuthTokens, error) {
	if !isValidEmail(req.Email) {
		return nil, nil, model.ErrInvalidEmail
	}

	if len(req.Password) < 8 {
		return nil, nil, model.ErrInvalidPassword
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.operatorRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, nil, model.ErrOperatorAlreadyExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	operator := model.NewOperator(email, req.Name, passwordHash)
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokens(ctx, operator.ID)
	if err != nil {
		return nil, nil, err
	}

	return operator.ToDTO(), tokens, nil
}

// Login authenticates an operator.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.OperatorDTO, *model.AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	operator, err := s.operatorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrOperatorNotFound) {
			return nil, nil, model.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := auth.VerifyPassword(req.Password, operator.PasswordHash); err != nil {
		return nil, nil, model.ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(ctx, operator.ID)
	if err != nil {
		return nil, nil, err
	}

	return operator.ToDTO(), tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenString string) (*model.AuthTokens, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	tokenHash := auth.HashToken(refreshTokenString)
	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if !dbToken.IsValid() {
		return nil, errors.New("refresh token expired or revoked")
	}

	tokens, err := s.generateTokens(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	_ = s.tokenRepo.Revoke(ctx, tokenHash)

	return tokens, nil
}

// Logout revokes all refresh tokens for an operator.
func (s *AuthService) Logout(ctx context.Context, operatorID string) error {
	return s.tokenRepo.RevokeAllForOperator(ctx, operatorID)
}

func (s *AuthService) generateTokens(ctx context.Context, operatorID string) (*model.AuthTokens, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(operatorID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(operatorID)
	if err != nil {
		return nil, err
	}

	tokenHash := auth.HashToken(refreshToken)
	dbToken := model.NewRefreshToken(operatorID, tokenHash, time.Now().UTC().Add(s.refreshExpiry))
	if err := s.tokenRepo.Create(ctx, dbToken); err != nil {
		return nil, err
	}

	return &model.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
