package chatapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoshino-dev/hoshi/pkg/auth"
	"github.com/hoshino-dev/hoshi/pkg/chat/chatsrv"
	"github.com/hoshino-dev/hoshi/pkg/errx"
)

type MessageHandlers struct {
	service *chatsrv.ReplyService
}

func NewMessageHandlers(service *chatsrv.ReplyService) *MessageHandlers {
	return &MessageHandlers{service: service}
}

func (h *MessageHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.TokenMiddleware) {
	router.Post("/messages", authMiddleware.Authenticate(), h.HandleMessage)
}

// HandleMessage accepts one relayed platform message and runs the reply
// pipeline on it
func (h *MessageHandlers) HandleMessage(c *fiber.Ctx) error {
	var msg chatsrv.InboundMessage
	if err := c.BodyParser(&msg); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if msg.UserID == "" || msg.Content == "" {
		return errx.Wrap(nil, "user_id and content are required", errx.TypeValidation)
	}

	result, err := h.service.HandleMessage(c.Context(), msg)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if !result.Handled {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(result)
}
