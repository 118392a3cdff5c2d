package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
	"github.com/Skotchmaster/deepchat/internal/tokens"
)

// Guard resolves the caller's identity from a bearer access token. It never
// caches: every call re-verifies the token and re-reads the identity, so a
// deleted user is locked out as soon as the record is gone.
type Guard struct {
	Store store.Store
	Codec *tokens.Codec
}

func (g *Guard) Resolve(ctx context.Context, bearer string) (*models.User, error) {
	subject, err := g.Codec.Verify(bearer)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var user models.User
	if err := g.Store.Get(ctx, store.Users, subject, &user); err != nil {
		return nil, ErrUnauthorized
	}

	// The hash exists for storage only; nothing past this point may see it.
	user.PasswordHash = ""
	return &user, nil
}

// RequireAuth guards a route group. The token comes from the Authorization
// header; the chat socket may pass it as ?token= instead, since browser
// websocket clients cannot set headers.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c.Request())
		if token == "" {
			token = c.QueryParam("token")
		}

		user, err := g.Resolve(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("user", user)
		c.Set("username", user.Username)
		return next(c)
	}
}

func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return parts[0]
}
