package http

import (
	"errors"

	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/classifier"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type classifyPromptHandler struct {
	logger     *logrus.Logger
	classifier classifier.Classifier
}

func NewClassifyPromptHandler(logger *logrus.Logger, c classifier.Classifier) Handler {
	return &classifyPromptHandler{logger: logger, classifier: c}
}

// Handle @Summary Classify a prompt
// @Description Returns the classifier's label scores as "label: score" pairs.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param prompt body request.ClassifyRequest true "Prompt"
// @Success 200 {object} map[string]interface{} "{\"Ok\": scores}"
// @Failure 400 {object} map[string]interface{} "{\"Err\": reason}"
// @Failure 502 {object} map[string]interface{} "{\"Err\": reason}"
// @Router /api/v1/classify [post]
func (h *classifyPromptHandler) Handle(c *fiber.Ctx) error {
	var req request.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.Err[any](err.Error()))
	}

	scores, err := h.classifier.Classify(c.UserContext(), req.Text)
	if err != nil {
		h.logger.WithError(err).Error("prompt classification failed")
		status := fiber.StatusBadGateway
		if errors.Is(err, classifier.ErrEmptyText) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(types.Err[any](err.Error()))
	}
	return c.Status(fiber.StatusOK).JSON(types.Ok(scores))
}
