package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lerianstudio/eventledger/internal/authn"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

const headerCorrelationID = "X-Request-Id"
const headerApiKey = "X-Api-Key"
const localActor = "actor"
const localCorrelationID = "correlationId"

// withCorrelationID stamps every request with an id, reusing one the
// caller already supplied rather than always minting a fresh one.
func withCorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Get(headerCorrelationID)
		if cid == "" {
			cid = uuid.New().String()
		}

		c.Set(headerCorrelationID, cid)
		c.Locals(localCorrelationID, cid)

		return c.Next()
	}
}

// withLogging logs one line per request at completion, mirroring the
// teacher's Common Log Format access logging without the debug-body
// dump this spec's scope does not need.
func withLogging(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}

		err := c.Next()

		logger.Infof("%s %s -> %d (correlationId=%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), c.Locals(localCorrelationID))

		return err
	}
}

// withAuth authenticates the request via bearer JWT or X-Api-Key,
// populating localActor with the resulting domain.Actor. Anonymous
// requests are let through with the Anonymous actor; the dispatcher's
// authorization step is what ultimately rejects them per-intent.
func withAuth(authnEngine *authn.Engine, jwtVerifier *authn.JWTVerifier, clockNowMillis func() int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key := c.Get(headerApiKey); key != "" {
			claims, err := authnEngine.VerifyApiKey(c.UserContext(), key, clockNowMillis())
			if err != nil {
				return writeError(c, err)
			}

			c.Locals(localActor, domain.EntityActor(claims.EntityID))

			return c.Next()
		}

		if auth := c.Get(fiber.HeaderAuthorization); auth != "" && jwtVerifier != nil {
			token := strings.TrimPrefix(auth, "Bearer ")

			claims, err := jwtVerifier.Verify(token)
			if err != nil {
				return writeError(c, err)
			}

			c.Locals(localActor, domain.EntityActor(claims.EntityID))

			return c.Next()
		}

		c.Locals(localActor, domain.Actor{Type: domain.ActorAnonymous})

		return c.Next()
	}
}

func requireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := c.Locals(localActor).(domain.Actor)
		if actor.Type == domain.ActorAnonymous {
			return writeError(c, apperr.Unauthenticated("this endpoint requires authentication"))
		}

		return c.Next()
	}
}
