package broadcastapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoshino-dev/hoshi/pkg/auth"
	"github.com/hoshino-dev/hoshi/pkg/broadcast"
	"github.com/hoshino-dev/hoshi/pkg/broadcast/broadcastsrv"
	"github.com/hoshino-dev/hoshi/pkg/errx"
)

type BroadcastHandlers struct {
	service *broadcastsrv.Service
}

func NewBroadcastHandlers(service *broadcastsrv.Service) *BroadcastHandlers {
	return &BroadcastHandlers{service: service}
}

func (h *BroadcastHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.TokenMiddleware) {
	router.Post("/broadcasts", authMiddleware.Authenticate(), h.RunBroadcast)
}

type runRequest struct {
	TimeOfDay string `json:"time_of_day"`
	Test      bool   `json:"test"`
	TargetID  string `json:"target_id"`
}

// RunBroadcast triggers one broadcast and waits for it to finish. Delivery is
// paced per recipient, so large rosters take a while; callers should use a
// generous request timeout.
func (h *BroadcastHandlers) RunBroadcast(c *fiber.Ctx) error {
	var req runRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errx.Wrap(err, "invalid request body", errx.TypeValidation)
		}
	}

	params := broadcast.NewRunParams()
	params.TimeOfDay = req.TimeOfDay
	params.Test = req.Test
	params.TargetID = req.TargetID

	outcome, err := h.service.Run(c.Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}
