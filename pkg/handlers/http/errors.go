package http

import (
	"errors"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/moderation"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
)

const (
	reasonInvalidBody = "invalid request body"
	reasonInternal    = "internal error"
)

func registryStatus(err error) int {
	switch {
	case domain.IsNotFoundError(err):
		return fiber.StatusNotFound
	case errors.Is(err, guardrail.ErrDuplicateID),
		errors.Is(err, guardrail.ErrInvalidTransition),
		errors.Is(err, guardrail.ErrAlreadyVoted),
		errors.Is(err, guardrail.ErrVoteLimitReached):
		return fiber.StatusConflict
	case errors.Is(err, guardrail.ErrNameRequired),
		errors.Is(err, guardrail.ErrOwnerRequired),
		errors.Is(err, guardrail.ErrRuleTextRequired),
		errors.Is(err, guardrail.ErrNoRules),
		errors.Is(err, guardrail.ErrInvalidVoteDirection),
		errors.Is(err, guardrail.ErrUnknownRuleStatus):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// resultError writes err as an Err result with the matching status code.
// Unexpected failures are reported without their internal detail.
func resultError(c *fiber.Ctx, err error) error {
	status := registryStatus(err)
	reason := err.Error()
	if status == fiber.StatusInternalServerError {
		reason = reasonInternal
	}
	return c.Status(status).JSON(types.Err[any](reason))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.Err[any](reasonInvalidBody))
}

// caller returns the authenticated identity or writes a 401.
func caller(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := identity.FromContext(c.UserContext())
	if !ok {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
	}
	return id, ok
}

func moderationStatus(err error) int {
	switch {
	case errors.Is(err, moderation.ErrEmptyContent),
		errors.Is(err, moderation.ErrEmptyBatch),
		errors.Is(err, request.ErrTextRequired),
		errors.Is(err, request.ErrItemsRequired):
		return fiber.StatusBadRequest
	case errors.Is(err, moderation.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, moderation.ErrAPI),
		errors.Is(err, moderation.ErrNetwork),
		errors.Is(err, moderation.ErrInvalidResponse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
