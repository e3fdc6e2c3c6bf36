package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listGuardrailsHandler struct {
	logger *logrus.Logger
	finder appGuardrail.Finder
}

func NewListGuardrailsHandler(logger *logrus.Logger, finder appGuardrail.Finder) Handler {
	return &listGuardrailsHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary List all guardrails
// @Tags Guardrails
// @Produce json
// @Success 200 {array} guardrail.Guardrail
// @Router /api/v1/guardrails [get]
func (h *listGuardrailsHandler) Handle(c *fiber.Ctx) error {
	list, err := h.finder.List(c.UserContext())
	prometheus.ObserveRegistry("get_all_guardrails", err)
	if err != nil {
		h.logger.WithError(err).Error("failed to list guardrails")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": reasonInternal})
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

type listMyGuardrailsHandler struct {
	logger *logrus.Logger
	finder appGuardrail.Finder
}

func NewListMyGuardrailsHandler(logger *logrus.Logger, finder appGuardrail.Finder) Handler {
	return &listMyGuardrailsHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary List the caller's guardrails
// @Tags Guardrails
// @Param Authorization header string true "Bearer token"
// @Produce json
// @Success 200 {array} guardrail.Guardrail
// @Failure 401 {object} map[string]interface{} "Authorization required"
// @Router /api/v1/guardrails/mine [get]
func (h *listMyGuardrailsHandler) Handle(c *fiber.Ctx) error {
	owner, ok := caller(c)
	if !ok {
		return nil
	}
	list, err := h.finder.ListByOwner(c.UserContext(), owner)
	prometheus.ObserveRegistry("get_guardrails_by_owner", err)
	if err != nil {
		h.logger.WithError(err).WithField("owner", owner).Error("failed to list guardrails by owner")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": reasonInternal})
	}
	return c.Status(fiber.StatusOK).JSON(list)
}
