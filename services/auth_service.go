package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
	"github.com/ray-remotestate/tableqr/utils"
)

const wrongCredentialsMsg = "wrong username/password"

type TokenIssuer interface {
	GenerateAccessToken(p models.Principal) (string, error)
}

type AuthService struct {
	store  repository.Reader
	tokens TokenIssuer
}

func NewAuthService(store repository.Reader, tokens TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Login checks the staff credentials and issues an access token. Unknown users,
// inactive users and wrong passwords all fail with the same message.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	user, err := s.store.GetStaffUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthenticated(wrongCredentialsMsg)
	}
	if err != nil {
		return nil, translate(err)
	}
	if !user.Active || !utils.CheckPassword(user.PasswordHash, req.Password) {
		logrus.WithField("username", username).Warn("failed login attempt")
		return nil, apperr.Unauthenticated(wrongCredentialsMsg)
	}

	principal := models.Principal{UserID: user.ID, Role: user.Role, RestaurantID: user.RestaurantID}
	token, err := s.tokens.GenerateAccessToken(principal)
	if err != nil {
		return nil, translate(err)
	}
	return &LoginResponse{
		AccessToken:  token,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
		UserID:       user.ID,
	}, nil
}
