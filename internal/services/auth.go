package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"studysahayak-backend/internal/middleware"
	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/repository"
)

const bcryptCost = 12

type AuthService struct {
	userRepo *repository.UserRepo
	jwtAuth  *middleware.JWTAuth
}

func NewAuthService(userRepo *repository.UserRepo, jwtAuth *middleware.JWTAuth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwtAuth:  jwtAuth,
	}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthTokens, error) {
	if fields := validateCredentials(req.Username, req.Password); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, &ConflictError{Message: "username already taken"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthTokens, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "invalid username or password"}
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "invalid username or password"}
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Not fatal for login
		log.Printf("failed to update last login for user %s: %v", user.ID, err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*models.AuthTokens, error) {
	token, expiresIn, err := s.jwtAuth.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		UserID:      user.ID.String(),
	}, nil
}

func validateCredentials(username, password string) map[string]string {
	fields := make(map[string]string)

	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 64 {
		fields["username"] = "username must be between 3 and 64 characters"
	} else {
		for _, r := range username {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '-' {
				fields["username"] = "username may only contain letters, digits, '_', '.' and '-'"
				break
			}
		}
	}

	if len(password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	} else if len(password) > 72 {
		// bcrypt limit
		fields["password"] = "password must be at most 72 characters"
	}

	return fields
}
