package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
)

// Claims are the fields read from an externally issued access token. The
// subject is the user id.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	Name  string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token has expired")
)

// Authenticator verifies HS256 bearer tokens. It never issues them.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a raw token.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpiredToken
		}
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid token and puts the caller on
// the request context.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return common.NewAppError("UNAUTHORIZED", "Not authorized, no token", errors.Join(common.ErrUnauthorized, errMissingToken))
		}
		claims, err := a.Verify(raw)
		if err != nil {
			return common.NewAppError("UNAUTHORIZED", "Not authorized, token failed", errors.Join(common.ErrUnauthorized, err))
		}
		ctx := common.WithUserID(c.UserContext(), claims.Subject)
		ctx = common.WithRoles(ctx, claims.Roles)
		c.SetUserContext(ctx)
		c.Locals("user_id", claims.Subject)
		return c.Next()
	}
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// requestID tags each request with an id, reusing the caller's X-Request-ID.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.SetUserContext(common.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
