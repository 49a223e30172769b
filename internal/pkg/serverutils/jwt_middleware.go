// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"workshop-app-be/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	currentUserKey = "current_user"
	tokenCookie    = "token"
)

var ErrNoToken = errors.New("no token")

// ParseUserToken validates an HS256 token and maps its claims to a user.
func ParseUserToken(secret, tokenStr string) (*model.CurrentUser, error) {
	if tokenStr == "" {
		return nil, ErrNoToken
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return nil, errors.New("token has no user_id")
	}
	user := &model.CurrentUser{ID: id}
	user.Name, _ = claims["name"].(string)
	user.Email, _ = claims["email"].(string)
	user.AvatarURL, _ = claims["avatar_url"].(string)
	return user, nil
}

// TokenFrom reads the bearer token, falling back to the token cookie.
func TokenFrom(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Cookies(tokenCookie)
}

// OptionalUserMiddleware resolves the logged in user when a valid token is
// present. Anonymous requests pass through untouched.
func OptionalUserMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}
		if user, err := ParseUserToken(secret, TokenFrom(ctx)); err == nil {
			ctx.Locals(currentUserKey, user)
			ctx.Locals("user_id", user.ID)
		}
		return ctx.Next()
	}
}

// CurrentUser is nil for anonymous requests.
func CurrentUser(ctx *fiber.Ctx) *model.CurrentUser {
	user, _ := ctx.Locals(currentUserKey).(*model.CurrentUser)
	return user
}
