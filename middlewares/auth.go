package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/utils"
)

type ContextKey string

const (
	principalContextKey ContextKey = "principal"
)

type TokenParser interface {
	ParseAccessToken(token string) (*utils.Claims, error)
}

func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractBearerToken(r)
			if err != nil {
				utils.RespondError(w, r, apperr.Unauthenticated("missing bearer token"))
				return
			}

			claims, err := tokens.ParseAccessToken(tokenStr)
			if err != nil {
				logrus.WithError(err).Debug("rejected access token")
				utils.RespondError(w, r, apperr.Unauthenticated("invalid or expired token"))
				return
			}

			ctx := WithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func GetPrincipal(r *http.Request) (models.Principal, error) {
	p, ok := r.Context().Value(principalContextKey).(models.Principal)
	if !ok {
		return models.Principal{}, errors.New("no principal in context")
	}
	return p, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

func RoleBasedMiddleware(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := GetPrincipal(r)
			if err != nil {
				utils.RespondError(w, r, apperr.Unauthenticated("authentication required"))
				return
			}
			if !allowed[principal.Role] {
				utils.RespondError(w, r, apperr.Unauthorized("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
