package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	usernamePattern       = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
)

const minPasswordLength = 8

type UserService struct {
	userRepo     *repository.UserRepository
	tokenService *TokenService
	tokenTTL     time.Duration
	log          *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, tokenService *TokenService, tokenTTL time.Duration, log *zap.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		tokenService: tokenService,
		tokenTTL:     tokenTTL,
		log:          log,
	}
}

func (s *UserService) CreateUser(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, validationf("username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if len(password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, remote("find user", err)
	}
	if existing != nil {
		return nil, validationf("username %q is taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, remote("create user", err)
	}

	s.log.Info("user created", zap.String("username", username), zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *UserService) GetUser(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, remote("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Login verifies the password and issues a bearer token.
func (s *UserService) Login(username, password string) (string, time.Time, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", time.Time{}, remote("find user", err)
	}
	if user == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login", zap.String("username", username))
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.tokenService.GenerateToken(user.Username, s.tokenTTL)
}
