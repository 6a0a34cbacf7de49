package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"armario-outfits/apperr"
	"armario-outfits/models"
	"armario-outfits/repository"
)

// TokenTTL is how long a sign-in lasts
const TokenTTL = 30 * 24 * time.Hour

const minPasswordLen = 8

// Claims identify the signed-in user inside a token
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// AuthService registers users, checks passwords and issues tokens
type AuthService struct {
	users  repository.UserRepositoryInterface
	secret []byte
	now    func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepositoryInterface, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), now: time.Now}
}

// Register creates an account and returns it with a fresh token
func (s *AuthService) Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, apperr.New(apperr.CodeInvalidInput, "password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, err
	}
	log.Infof("👤 Registered %s", user.ID)
	return &models.AuthResponse{User: *user, Token: token}, nil
}

// SignIn checks the password and returns the user with a fresh token
func (s *AuthService) SignIn(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	invalid := apperr.New(apperr.CodeUnauthorized, "invalid email or password")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Warnf("⚠️  Failed sign-in for %s", user.ID)
		return nil, invalid
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: *user, Token: token}, nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, uid)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, apperr.New(apperr.CodeUnauthorized, "user not found")
	}
	return user, err
}

// SignToken issues an HS256 token for uid
func (s *AuthService) SignToken(uid string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns the user id inside it
func (s *AuthService) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUnauthorized, err, "invalid session")
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.UserID == "" {
		return "", apperr.New(apperr.CodeUnauthorized, "invalid session")
	}
	return c.UserID, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.New(apperr.CodeInvalidInput, "a valid email is required")
	}
	return email, nil
}
