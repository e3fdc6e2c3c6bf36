package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type createGuardrailHandler struct {
	logger  *logrus.Logger
	creator appGuardrail.Creator
}

func NewCreateGuardrailHandler(logger *logrus.Logger, creator appGuardrail.Creator) Handler {
	return &createGuardrailHandler{
		logger:  logger,
		creator: creator,
	}
}

// Handle @Summary Create a guardrail
// @Description Registers a guardrail owned by the caller. Ids, statuses and vote counts in the body are ignored.
// @Tags Guardrails
// @Param Authorization header string true "Bearer token"
// @Accept json
// @Produce json
// @Param guardrail body request.CreateGuardrailRequest true "Guardrail"
// @Success 201 {object} map[string]interface{} "{\"Ok\": id}"
// @Failure 400 {object} map[string]interface{} "{\"Err\": reason}"
// @Failure 401 {object} map[string]interface{} "Authorization required"
// @Failure 409 {object} map[string]interface{} "Duplicate id, retry"
// @Router /api/v1/guardrails [post]
func (h *createGuardrailHandler) Handle(c *fiber.Ctx) error {
	owner, ok := caller(c)
	if !ok {
		return nil
	}

	var req request.CreateGuardrailRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse guardrail request")
		return invalidBody(c)
	}

	id, err := h.creator.Create(c.UserContext(), owner, &req)
	prometheus.ObserveRegistry("create_guardrail", err)
	if err != nil {
		return resultError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.Ok(id))
}
