package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSummaryHandler struct {
	logger  *logrus.Logger
	builder appGuardrail.SummaryBuilder
}

func NewGetSummaryHandler(logger *logrus.Logger, builder appGuardrail.SummaryBuilder) Handler {
	return &getSummaryHandler{logger: logger, builder: builder}
}

// Handle @Summary Dashboard summary
// @Description Guardrail and rule counts per status, for the caller and overall. Anonymous callers own nothing.
// @Tags Guardrails
// @Produce json
// @Success 200 {object} guardrail.Summary
// @Router /api/v1/summary [get]
func (h *getSummaryHandler) Handle(c *fiber.Ctx) error {
	owner, _ := identity.FromContext(c.UserContext())
	summary, err := h.builder.Build(c.UserContext(), owner)
	if err != nil {
		h.logger.WithError(err).Error("failed to build summary")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": reasonInternal})
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
