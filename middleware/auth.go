package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1rvyn/web-stories-editor/models"
	"github.com/MicahParks/keyfunc"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// TokenCookie carries the access token for browser sessions.
const TokenCookie = "jwt"

// NewJWKS fetches and keeps refreshing the signing keys of an Auth0 tenant.
func NewJWKS(auth0Domain string) (*keyfunc.JWKS, error) {
	jwksURL := "https://" + auth0Domain + "/.well-known/jwks.json"
	options := keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS from Auth0: %w", err)
	}
	return jwks, nil
}

type UserFinder interface {
	ByAuth0ID(ctx context.Context, sub string) (*models.User, error)
}

// Auth checks bearer tokens issued by Auth0 and resolves their editor.
type Auth struct {
	Keyfunc  jwt.Keyfunc
	Audience string
	Issuer   string
	Users    UserFinder
	Logger   *zap.Logger
}

// IssuerFor is the issuer claim Auth0 puts into tokens of domain.
func IssuerFor(auth0Domain string) string {
	return "https://" + auth0Domain + "/"
}

// Required protects API routes. It sets "user_id" and "claims" in locals.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.Keyfunc == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "JWKS not initialized",
			})
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		token, err := jwt.Parse(tokenString, a.Keyfunc)
		if err != nil || !token.Valid {
			a.Logger.Debug("Rejected token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		if err := verifyAudience(claims, a.Audience); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid audience",
			})
		}

		if err := verifyIssuer(claims, a.Issuer); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid issuer",
			})
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims: 'sub' missing",
			})
		}

		user, err := a.Users.ByAuth0ID(c.UserContext(), sub)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				a.Logger.Error("Looking up user", zap.String("sub", sub), zap.Error(err))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("claims", claims)
		return c.Next()
	}
}

// UserID returns the editor resolved by Required, or 0.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if cookie := c.Cookies(TokenCookie); cookie != "" {
			return cookie, nil
		}
		return "", errors.New("Missing Authorization header")
	}
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return "", errors.New("Invalid Authorization header format")
	}
	return strings.TrimSpace(tokenString), nil
}

func verifyAudience(claims jwt.MapClaims, expectedAudience string) error {
	audValue, ok := claims["aud"]
	if !ok {
		return errors.New("audience claim is missing")
	}

	switch aud := audValue.(type) {
	case string:
		if aud != expectedAudience {
			return errors.New("invalid audience")
		}
	case []interface{}:
		found := false
		for _, a := range aud {
			if aStr, ok := a.(string); ok && aStr == expectedAudience {
				found = true
				break
			}
		}
		if !found {
			return errors.New("invalid audience")
		}
	default:
		return errors.New("invalid audience claim format")
	}

	return nil
}

func verifyIssuer(claims jwt.MapClaims, expectedIssuer string) error {
	iss, ok := claims["iss"].(string)
	if !ok {
		return errors.New("issuer claim is missing or invalid")
	}
	if iss != expectedIssuer {
		return errors.New("invalid issuer")
	}
	return nil
}
