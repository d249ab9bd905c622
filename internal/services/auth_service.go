package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"itemvault/internal/models"
	"itemvault/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so a caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken covers bad signatures, mismatched algorithms, expired
// tokens and tokens without a subject.
var ErrInvalidToken = errors.New("invalid token")

// HashPassword produces a salted bcrypt digest of the password. Each call
// yields a different digest for the same input.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the password matches the stored digest.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthService handles registration, login and bearer-token handling.
type AuthService struct {
	userRepo      repositories.UserRepository
	jwtSecret     []byte
	signingMethod jwt.SigningMethod
	tokenTTL      time.Duration
}

// NewAuthService creates a new AuthService. algorithm names the HMAC signing
// method used for tokens (HS256, HS384 or HS512).
func NewAuthService(userRepo repositories.UserRepository, jwtSecret, algorithm string, tokenTTL time.Duration) *AuthService {
	signingMethod := jwt.GetSigningMethod(algorithm)
	if signingMethod == nil {
		signingMethod = jwt.SigningMethodHS256
	}
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     []byte(jwtSecret),
		signingMethod: signingMethod,
		tokenTTL:      tokenTTL,
	}
}

// RegisterUser normalizes the email to lowercase, hashes the password and
// inserts the user. Returns repositories.ErrDuplicateEmail when the email is
// already registered.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginUser verifies the credentials and issues a bearer token for the user.
// A missing user and a wrong password are not distinguished.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.CreateAccessToken(user.ID.Hex(), s.tokenTTL)
}

// CreateAccessToken signs a {sub, exp} claim set expiring after ttl.
func (s *AuthService) CreateAccessToken(subject string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(s.signingMethod, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a bearer token, returning its subject.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
