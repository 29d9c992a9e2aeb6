package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"toolhub/internal/model"
	"toolhub/internal/repository"
	"toolhub/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	initialAdminEmail string
	logger            *slog.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService.
// An account signing up with initialAdminEmail is created with the admin role.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminEmail string, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		initialAdminEmail: NormalizeEmail(initialAdminEmail),
		logger:            logger,
	}
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user account with the default role
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	email := NormalizeEmail(req.Email)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if email == "" || req.Password == "" || firstName == "" || lastName == "" {
		return nil, ErrMissingFields
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var company *string
	if req.Company != nil {
		if trimmed := strings.TrimSpace(*req.Company); trimmed != "" {
			company = &trimmed
		}
	}

	userRole := model.RoleUser
	if s.initialAdminEmail != "" && email == s.initialAdminEmail {
		userRole = model.RoleAdmin
		s.logger.InfoContext(ctx, "registering initial admin", "email", email)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Company:      company,
		Role:         userRole,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a session token
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		// burn a comparable amount of time so a missing account is not observable
		utils.CheckPasswordHash(password, s.decoy())
		return "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(model.SessionUser{
		Email: user.Email,
		Role:  user.Role,
		Name:  user.FirstName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

func (s *authService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := utils.HashPassword("toolhub-decoy-password")
		if err != nil {
			s.logger.Error("failed to build decoy hash", "error", err)
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}
