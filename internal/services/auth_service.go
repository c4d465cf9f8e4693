package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
)

// authService implements AuthService
type authService struct {
	users  repository.UserRepository
	jwt    *auth.JWTService
	logger logger.Logger
	admins map[string]bool
}

// newAuthService grants the admin role to adminEmails when they register or
// log in.
func newAuthService(users repository.UserRepository, jwt *auth.JWTService, log logger.Logger, adminEmails []string) *authService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = true
	}
	return &authService{users: users, jwt: jwt, logger: log, admins: admins}
}

func (s *authService) roleFor(email string) models.UserRole {
	if s.admins[email] {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.Conflict("an account with this email already exists", nil)
	}
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.DatabaseError("failed to check existing user", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, errors.InternalError("failed to process password", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         string(s.roleFor(email)),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.DatabaseError("failed to create user", err)
	}

	s.logger.Info("User registered", "user_id", user.ID.String())
	return user, nil
}

// Login authenticates a user and returns a token
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized("invalid credentials", nil)
		}
		return nil, errors.DatabaseError("failed to load user", err)
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, errors.Unauthorized("invalid credentials", nil)
	}
	if s.roleFor(user.Email) == models.RoleAdmin && user.Role != string(models.RoleAdmin) {
		if err := s.users.SetRole(ctx, user.ID, string(models.RoleAdmin)); err != nil {
			return nil, errors.DatabaseError("failed to grant admin role", err)
		}
		user.Role = string(models.RoleAdmin)
		s.logger.Info("User granted admin role", "user_id", user.ID.String())
	}

	token, expiresAt, err := s.jwt.GenerateToken(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, errors.InternalError("failed to generate token", err)
	}

	now := nowUTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Failed to record login time", "user_id", user.ID.String(), "error", err.Error())
	} else {
		user.LastLoginAt = &now
	}

	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Me returns the authenticated user
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("user not found", err)
		}
		return nil, errors.DatabaseError("failed to load user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
