package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getGuardrailHandler struct {
	logger *logrus.Logger
	finder appGuardrail.Finder
}

func NewGetGuardrailHandler(logger *logrus.Logger, finder appGuardrail.Finder) Handler {
	return &getGuardrailHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary Retrieve a guardrail by ID
// @Tags Guardrails
// @Produce json
// @Param guardrail_id path string true "Guardrail ID"
// @Success 200 {object} map[string]interface{} "{\"Ok\": guardrail}"
// @Failure 404 {object} map[string]interface{} "{\"Err\": \"guardrail not found\"}"
// @Router /api/v1/guardrails/{guardrail_id} [get]
func (h *getGuardrailHandler) Handle(c *fiber.Ctx) error {
	guardrailID := c.Params("guardrail_id")

	g, err := h.finder.Get(c.UserContext(), guardrailID)
	prometheus.ObserveRegistry("get_guardrail", err)
	if err != nil {
		if registryStatus(err) == fiber.StatusInternalServerError {
			h.logger.WithError(err).WithField("guardrail_id", guardrailID).Error("failed to get guardrail")
		}
		return resultError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.Ok(g))
}
