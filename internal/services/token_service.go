package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

const tokenIssuer = "farmhand"

type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenService struct {
	tokenRepo *repository.TokenRepository
	userRepo  *repository.UserRepository
	jwtSecret string
	now       func() time.Time
}

func NewTokenService(tokenRepo *repository.TokenRepository, userRepo *repository.UserRepository, jwtSecret string) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

func (s *TokenService) GenerateToken(username string, expiresIn time.Duration) (string, time.Time, error) {
	if expiresIn <= 0 {
		return "", time.Time{}, validationf("token lifetime must be positive")
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", time.Time{}, remote("find user", err)
	}
	if user == nil {
		return "", time.Time{}, ErrUserNotFound
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(expiresIn)

	claims := TokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        fmt.Sprintf("%d-%d", user.ID, issuedAt.UnixNano()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	apiToken := &models.APIToken{
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}

	if err := s.tokenRepo.Create(apiToken); err != nil {
		return "", time.Time{}, remote("store token", err)
	}

	return tokenString, expiresAt, nil
}

func (s *TokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// revoked tokens are absent from the table
	dbToken, err := s.tokenRepo.FindActive(tokenString, s.now())
	if err != nil {
		return nil, err
	}
	if dbToken == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) ListUserTokens(username string) ([]models.APIToken, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, remote("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.tokenRepo.ListForUser(user.ID)
}

func (s *TokenService) RevokeToken(tokenID uint, username string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return remote("find user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	removed, err := s.tokenRepo.Revoke(tokenID, user.ID)
	if err != nil {
		return remote("revoke token", err)
	}
	if !removed {
		return notFound("token")
	}
	return nil
}

func (s *TokenService) PurgeExpired() (int64, error) {
	return s.tokenRepo.PurgeExpired(s.now())
}
