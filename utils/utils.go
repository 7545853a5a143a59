package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/tableqr/config"
	"github.com/ray-remotestate/tableqr/models"
)

// Claims is the payload of a staff access token.
type Claims struct {
	UserID       uuid.UUID   `json:"userId"`
	Role         models.Role `json:"role"`
	RestaurantID uuid.UUID   `json:"restaurantId"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() models.Principal {
	return models.Principal{UserID: c.UserID, Role: c.Role, RestaurantID: c.RestaurantID}
}

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg config.JWT) *TokenManager {
	return &TokenManager{secret: cfg.SecretKey, issuer: cfg.Issuer, ttl: cfg.TTL, now: time.Now}
}

func (m *TokenManager) GenerateAccessToken(p models.Principal) (string, error) {
	now := m.now()

	accessClaims := &Claims{
		UserID:       p.UserID,
		Role:         p.Role,
		RestaurantID: p.RestaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return accessToken, nil
}

// ParseAccessToken verifies signature, issuer and expiry and returns a
// principal with a known role and a restaurant.
func (m *TokenManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Role.IsValid() || claims.RestaurantID == uuid.Nil || claims.UserID == uuid.Nil {
		return nil, errors.New("token is missing staff claims")
	}
	return claims, nil
}

func HashPassword(pw string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
