package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/config"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("expired token")
	ErrMissingIdentity = errors.New("token does not carry a caller identity")
)

//go:generate mockery --name=Manager --dir=. --output=mocks/ --filename=jwt_manager_mock.go --case=underscore --with-expecter
type (
	Manager interface {
		CreateToken(subject identity.Identity, ttl time.Duration) (string, error)
		ValidateToken(tokenString string) error
		DecodeToken(tokenString string) (*Claims, error)
		Identity(tokenString string) (identity.Identity, error)
	}
	manager struct {
		config *config.ServerConfig
	}
)

func NewJwtManager(config *config.ServerConfig) Manager {
	return &manager{
		config: config,
	}
}

type Claims struct {
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the caller principal: the subject claim, or user_id for tokens
// issued without one.
func (c *Claims) Identity() identity.Identity {
	if c.Subject != "" {
		return identity.Identity(c.Subject)
	}
	return identity.Identity(c.UserID)
}

// CreateToken signs a token for subject. A zero ttl yields a token without expiry.
func (m *manager) CreateToken(subject identity.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (m *manager) ValidateToken(tokenString string) error {
	_, err := m.parse(tokenString)
	return err
}

func (m *manager) DecodeToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString)
}

func (m *manager) Identity(tokenString string) (identity.Identity, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return "", err
	}
	id := claims.Identity()
	if id.IsZero() {
		return "", ErrMissingIdentity
	}
	return id, nil
}

func (m *manager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(m.config.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
