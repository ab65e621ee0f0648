package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/profilebot/internal/photo"
)

// NewPhotoHandler returns a handler for the /photo command, which forces
// the weekday photo rotation.
func NewPhotoHandler(deps HandlerDeps) bot.HandlerFunc {
	return photoHandler{deps}.Handle
}

type photoHandler struct {
	deps HandlerDeps
}

func (h photoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "photo")

	if update.Message == nil {
		return
	}

	log.InfoContext(ctx, "Handling /photo command", "chat_id", update.Message.Chat.ID)
	res, err := h.deps.Photos.Rotate(ctx, h.deps.Clock(), true)
	if err != nil {
		log.ErrorContext(ctx, "Forced photo rotation failed", "error", err)
	}
	reply(ctx, b, update.Message.Chat.ID, PhotoText(res, err), log)
}

// PhotoText describes the result of a rotation.
func PhotoText(res photo.Result, err error) string {
	if err != nil {
		return fmt.Sprintf("Photo update failed: %v", err)
	}
	switch res.Outcome {
	case photo.OutcomeApplied:
		return fmt.Sprintf("Profile photo set to %s.", res.Path)
	case photo.OutcomeMissing:
		return fmt.Sprintf("No photo for %s: %s not found.", res.Weekday, res.Path)
	default:
		return fmt.Sprintf("Photo for %s already applied today.", res.Weekday)
	}
}
