package http

import (
	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type advanceToVotingHandler struct {
	logger     *logrus.Logger
	governance appGuardrail.Governance
}

func NewAdvanceToVotingHandler(logger *logrus.Logger, governance appGuardrail.Governance) Handler {
	return &advanceToVotingHandler{logger: logger, governance: governance}
}

// Handle @Summary Open voting on a rule
// @Tags Rules
// @Param Authorization header string true "Bearer token"
// @Produce json
// @Param rule_id path string true "Rule ID"
// @Success 200 {object} map[string]interface{} "{\"Ok\": rule}"
// @Failure 404 {object} map[string]interface{} "{\"Err\": \"rule not found\"}"
// @Failure 409 {object} map[string]interface{} "{\"Err\": reason}"
// @Router /api/v1/rules/{rule_id}/voting [post]
func (h *advanceToVotingHandler) Handle(c *fiber.Ctx) error {
	if _, ok := caller(c); !ok {
		return nil
	}
	rule, err := h.governance.AdvanceToVoting(c.UserContext(), c.Params("rule_id"))
	prometheus.ObserveRegistry("advance_to_voting", err)
	if err != nil {
		return resultError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.Ok(rule))
}

type castVoteHandler struct {
	logger     *logrus.Logger
	governance appGuardrail.Governance
}

func NewCastVoteHandler(logger *logrus.Logger, governance appGuardrail.Governance) Handler {
	return &castVoteHandler{logger: logger, governance: governance}
}

// Handle @Summary Vote on a rule
// @Description One ballot per caller and rule. Direction is approve or reject.
// @Tags Rules
// @Param Authorization header string true "Bearer token"
// @Accept json
// @Produce json
// @Param rule_id path string true "Rule ID"
// @Param vote body request.CastVoteRequest true "Vote"
// @Success 200 {object} map[string]interface{} "{\"Ok\": rule}"
// @Failure 400 {object} map[string]interface{} "{\"Err\": reason}"
// @Failure 409 {object} map[string]interface{} "{\"Err\": reason}"
// @Router /api/v1/rules/{rule_id}/votes [post]
func (h *castVoteHandler) Handle(c *fiber.Ctx) error {
	voter, ok := caller(c)
	if !ok {
		return nil
	}

	var req request.CastVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	direction, err := req.Validate()
	if err != nil {
		return resultError(c, err)
	}

	rule, err := h.governance.CastVote(c.UserContext(), c.Params("rule_id"), voter, direction)
	prometheus.ObserveRegistry("cast_vote", err)
	if err != nil {
		return resultError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.Ok(rule))
}

type finalizeRuleHandler struct {
	logger     *logrus.Logger
	governance appGuardrail.Governance
}

func NewFinalizeRuleHandler(logger *logrus.Logger, governance appGuardrail.Governance) Handler {
	return &finalizeRuleHandler{logger: logger, governance: governance}
}

// Handle @Summary Close voting on a rule
// @Description Moves a Voting rule to Approved or Rejected according to the ballots.
// @Tags Rules
// @Param Authorization header string true "Bearer token"
// @Produce json
// @Param rule_id path string true "Rule ID"
// @Success 200 {object} map[string]interface{} "{\"Ok\": rule}"
// @Failure 409 {object} map[string]interface{} "{\"Err\": reason}"
// @Router /api/v1/rules/{rule_id}/finalize [post]
func (h *finalizeRuleHandler) Handle(c *fiber.Ctx) error {
	if _, ok := caller(c); !ok {
		return nil
	}
	rule, err := h.governance.Finalize(c.UserContext(), c.Params("rule_id"))
	prometheus.ObserveRegistry("finalize", err)
	if err != nil {
		return resultError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.Ok(rule))
}
