package router

import (
	"errors"

	_ "github.com/NeuralTrust/ConsensusSentry/docs"
	handlers "github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http"
	"github.com/NeuralTrust/ConsensusSentry/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/swaggo/swag"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

const swaggerPath = "/swagger.json"

type registryRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewRegistryRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &registryRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *registryRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h.CreateGuardrailHandler == nil || h.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}

	router.Get(swaggerPath, func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})
	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: swaggerPath,
	}))

	router.Get("/version", h.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		for _, m := range []middleware.Middleware{
			r.middlewareTransport.MetricsMiddleware,
			r.middlewareTransport.IdentityMiddleware,
		} {
			if m != nil {
				v1.Use(m.Middleware())
			}
		}

		guardrails := v1.Group("/guardrails")
		{
			guardrails.Post("", h.CreateGuardrailHandler.Handle)
			guardrails.Get("", h.ListGuardrailsHandler.Handle)
			// Registered before /:guardrail_id so "mine" is not taken as an id.
			guardrails.Get("/mine", h.ListMyGuardrailsHandler.Handle)
			guardrails.Get("/:guardrail_id", h.GetGuardrailHandler.Handle)
			guardrails.Post("/:guardrail_id/rules", h.ProposeRuleHandler.Handle)
		}

		rules := v1.Group("/rules")
		{
			rules.Post("/:rule_id/voting", h.AdvanceToVotingHandler.Handle)
			rules.Post("/:rule_id/votes", h.CastVoteHandler.Handle)
			rules.Post("/:rule_id/finalize", h.FinalizeRuleHandler.Handle)
		}

		v1.Get("/summary", h.GetSummaryHandler.Handle)

		if h.ModerationCheckHandler != nil {
			moderation := v1.Group("/moderation")
			{
				moderation.Post("/check", h.ModerationCheckHandler.Handle)
				moderation.Post("/batch_check", h.ModerationBatchHandler.Handle)
				moderation.Get("/health", h.ModerationHealthHandler.Handle)
			}
		}
		if h.ClassifyPromptHandler != nil {
			v1.Post("/classify", h.ClassifyPromptHandler.Handle)
		}
	}
	return nil
}
