// middleware/jwt_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

// JwtCustomClaims is the session token payload. Id (jti) is what logout revokes.
type JwtCustomClaims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT issues a signed session token for the user.
func (i *TokenIssuer) GenerateJWT(userID, email string, role models.Role) (string, *JwtCustomClaims, error) {
	id, err := security.NewTokenID()
	if err != nil {
		return "", nil, err
	}
	now := i.now()
	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			Id:        id,
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.ttl).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// JWTMiddleware validates the bearer token (or the token query parameter used
// by the websocket) and rejects tokens revoked by logout.
func JWTMiddleware(secret string, revoked RevocationChecker) echo.MiddlewareFunc {
	jwtMw := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:  []byte(secret),
		Claims:      &JwtCustomClaims{},
		TokenLookup: "header:" + echo.HeaderAuthorization + ",query:token",
		SuccessHandler: func(c echo.Context) {
			claims := GetUserFromToken(c)
			c.Set("userId", claims.UserID)
			c.Set("role", string(claims.Role))
			c.Set("email", claims.Email)
		},
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			logger.Get("app").WithError(err).Debug("JWT middleware rejected request")
			return unauthorized(c, "Please provide valid credentials")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMw(func(c echo.Context) error {
			claims := GetUserFromToken(c)
			if claims == nil {
				return unauthorized(c, "Invalid token")
			}
			if revoked != nil && revoked.IsRevoked(c.Request().Context(), claims.Id) {
				return unauthorized(c, "Token has been invalidated")
			}
			return next(c)
		})
	}
}

// GetUserFromToken extracts the session claims set by JWTMiddleware.
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// ExtractUserID returns the signed-in uid.
func ExtractUserID(c echo.Context) (string, error) {
	if uid, ok := c.Get("userId").(string); ok && uid != "" {
		return uid, nil
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserID, nil
	}
	return "", errors.New("invalid token")
}

// ExtractRole returns the role carried by the session token.
func ExtractRole(c echo.Context) models.Role {
	if claims := GetUserFromToken(c); claims != nil {
		return claims.Role
	}
	return ""
}

func unauthorized(c echo.Context, message string) error {
	return deny(c, http.StatusUnauthorized, message, security.Decision{Redirect: security.LoginPath})
}
