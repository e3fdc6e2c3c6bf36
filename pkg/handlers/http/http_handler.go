package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Registry
	CreateGuardrailHandler  Handler
	ProposeRuleHandler      Handler
	GetGuardrailHandler     Handler
	ListMyGuardrailsHandler Handler
	ListGuardrailsHandler   Handler
	AdvanceToVotingHandler  Handler
	CastVoteHandler         Handler
	FinalizeRuleHandler     Handler
	GetSummaryHandler       Handler

	// Moderation
	ModerationCheckHandler  Handler
	ModerationBatchHandler  Handler
	ModerationHealthHandler Handler
	ClassifyPromptHandler   Handler

	GetVersionHandler Handler
}
