package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lottoroom/lottoroom-backend/internal/config"
	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"github.com/lottoroom/lottoroom-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any login failure, without
// distinguishing unknown accounts from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an email that already has an account
var ErrEmailTaken = errors.New("email already registered")

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

// Register handles user registration
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role != models.RoleOperator {
		role = models.RolePlayer
	}

	user := &models.User{
		Email:         req.Email,
		Password:      string(hashed),
		Role:          role,
		LedgerAccount: req.LedgerAccount,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// Login handles user login, returning a signed token on success
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	user.Password = ""
	return &models.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}
