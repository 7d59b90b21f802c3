package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"createform/internal/config"
	"createform/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ownerNamespace derives stable owner ids from usernames
var ownerNamespace = uuid.MustParse("6f1c2a52-4f0e-4d7c-9b8e-2f3a1c5d7e90")

// AuthService handles owner authentication
type AuthService struct {
	users     map[string][]byte // username -> bcrypt hash
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new auth service from configured users.
// A plain username/password pair is hashed at start-up. Usernames are case-insensitive
// since viper lowercases the keys of the users map.
func NewAuthService(cfg config.AuthConfig) (*AuthService, error) {
	users := make(map[string][]byte, len(cfg.Users)+1)
	for name, hash := range cfg.Users {
		users[normalizeUsername(name)] = []byte(hash)
	}
	if cfg.Username != "" && cfg.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", cfg.Username, err)
		}
		users[normalizeUsername(cfg.Username)] = hash
	}
	if len(users) == 0 {
		return nil, errors.New("auth: no users configured")
	}

	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		now:       time.Now,
	}, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// OwnerID returns the stable owner id of a username
func OwnerID(username string) string {
	return "owner_" + uuid.NewSHA1(ownerNamespace, []byte(normalizeUsername(username))).String()
}

// Login validates credentials and returns a signed owner token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	username = normalizeUsername(username)
	hash, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	ownerID := OwnerID(username)
	now := s.now()
	claims := &model.OwnerClaims{
		OwnerID:  ownerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  ownerID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   tokenString,
		OwnerID: ownerID,
	}, nil
}

// ValidateOwnerToken validates an owner JWT and returns its claims
func (s *AuthService) ValidateOwnerToken(tokenString string) (*model.OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid || claims.OwnerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
