package middleware

import (
	"strings"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/auth/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

type identityMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

// NewIdentityMiddleware resolves the caller identity from a bearer token and
// stores it in the request context. Requests without a token continue
// anonymously; a malformed or invalid token is rejected with 401.
func NewIdentityMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
) Middleware {
	return &identityMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *identityMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(authorizationHeader)
		if authHeader == "" {
			return ctx.Next()
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format"})
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Empty token provided"})
		}

		caller, err := m.jwtManager.Identity(tokenString)
		if err != nil {
			m.logger.WithError(err).Debug("invalid token")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		ctx.SetUserContext(identity.WithIdentity(ctx.UserContext(), caller))
		return ctx.Next()
	}
}
