package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type proposeRuleHandler struct {
	logger   *logrus.Logger
	proposer appGuardrail.RuleProposer
}

func NewProposeRuleHandler(logger *logrus.Logger, proposer appGuardrail.RuleProposer) Handler {
	return &proposeRuleHandler{
		logger:   logger,
		proposer: proposer,
	}
}

// Handle @Summary Propose a rule
// @Description Appends a Proposed rule to an existing guardrail.
// @Tags Guardrails
// @Param Authorization header string true "Bearer token"
// @Accept json
// @Produce json
// @Param guardrail_id path string true "Guardrail ID"
// @Param rule body request.RuleRequest true "Rule"
// @Success 201 {object} map[string]interface{} "{\"Ok\": rule_id}"
// @Failure 400 {object} map[string]interface{} "{\"Err\": reason}"
// @Failure 404 {object} map[string]interface{} "{\"Err\": \"guardrail not found\"}"
// @Router /api/v1/guardrails/{guardrail_id}/rules [post]
func (h *proposeRuleHandler) Handle(c *fiber.Ctx) error {
	if _, ok := caller(c); !ok {
		return nil
	}

	var req request.RuleRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse rule request")
		return invalidBody(c)
	}
	if err := req.Validate(); err != nil {
		return resultError(c, err)
	}

	ruleID, err := h.proposer.Propose(c.UserContext(), c.Params("guardrail_id"), &req)
	prometheus.ObserveRegistry("propose_rule", err)
	if err != nil {
		return resultError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.Ok(ruleID))
}
