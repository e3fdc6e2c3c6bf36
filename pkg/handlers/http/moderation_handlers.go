package http

import (
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/moderation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type moderationCheckHandler struct {
	logger *logrus.Logger
	client moderation.Client
}

func NewModerationCheckHandler(logger *logrus.Logger, client moderation.Client) Handler {
	return &moderationCheckHandler{logger: logger, client: client}
}

// Handle @Summary Check content
// @Description Validates one text against the moderation service.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param check body request.CheckRequest true "Content"
// @Success 200 {object} moderation.CheckResult
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Moderation service error"
// @Failure 504 {object} map[string]interface{} "Moderation service timeout"
// @Router /api/v1/moderation/check [post]
func (h *moderationCheckHandler) Handle(c *fiber.Ctx) error {
	var req request.CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reasonInvalidBody})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.client.ValidateWithContext(c.UserContext(), req.Text, req.Context)
	prometheus.ObserveModeration("check", moderation.Outcome(err))
	if err != nil {
		h.logger.WithError(err).Error("moderation check failed")
		return c.Status(moderationStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type moderationBatchHandler struct {
	logger *logrus.Logger
	client moderation.Client
}

func NewModerationBatchHandler(logger *logrus.Logger, client moderation.Client) Handler {
	return &moderationBatchHandler{logger: logger, client: client}
}

// Handle @Summary Check a batch of contents
// @Description Results keep the order of the submitted items. A failure yields no partial results.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param batch body request.BatchCheckRequest true "Items"
// @Success 200 {object} moderation.BatchResult
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Moderation service error"
// @Router /api/v1/moderation/batch_check [post]
func (h *moderationBatchHandler) Handle(c *fiber.Ctx) error {
	var req request.BatchCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reasonInvalidBody})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.client.ValidateBatch(c.UserContext(), req.Texts())
	prometheus.ObserveModeration("batch_check", moderation.Outcome(err))
	if err != nil {
		h.logger.WithError(err).WithField("items", len(req.Items)).Error("moderation batch failed")
		return c.Status(moderationStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type moderationHealthHandler struct {
	logger *logrus.Logger
	client moderation.Client
}

func NewModerationHealthHandler(logger *logrus.Logger, client moderation.Client) Handler {
	return &moderationHealthHandler{logger: logger, client: client}
}

// Handle @Summary Moderation service health
// @Tags Moderation
// @Produce json
// @Success 200 {object} moderation.HealthStatus
// @Failure 502 {object} map[string]interface{} "Moderation service unreachable"
// @Router /api/v1/moderation/health [get]
func (h *moderationHealthHandler) Handle(c *fiber.Ctx) error {
	status, err := h.client.Health(c.UserContext())
	prometheus.ObserveModeration("health", moderation.Outcome(err))
	if err != nil {
		h.logger.WithError(err).Warn("moderation health check failed")
		return c.Status(moderationStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(status)
}
