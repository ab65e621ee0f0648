package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/profilebot/internal/compose"
)

// NewPreviewHandler returns a handler for the /preview command.
func NewPreviewHandler(deps HandlerDeps) bot.HandlerFunc {
	return previewHandler{deps}.Handle
}

type previewHandler struct {
	deps HandlerDeps
}

func (h previewHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "preview")

	if update.Message == nil {
		return
	}

	fields := h.deps.Composer.Compose(ctx, h.deps.Clock())
	log.InfoContext(ctx, "Handling /preview command", "chat_id", update.Message.Chat.ID, "degraded", fields.Report.Degraded())
	reply(ctx, b, update.Message.Chat.ID, PreviewText(fields), log)
}

// PreviewText renders composed fields and their sources for display.
func PreviewText(f compose.Fields) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "First name: %s\n", f.First)
	fmt.Fprintf(&sb, "Last name: %s\n", f.Last)
	fmt.Fprintf(&sb, "Bio:\n%s\n\n", f.Bio)
	fmt.Fprintf(&sb, "Next prayer: %s\n", describePart(f.Report.NextPrayer))
	fmt.Fprintf(&sb, "Hijri: %s\n", describePart(f.Report.Hijri))
	fmt.Fprintf(&sb, "Weather: %s", describePart(f.Report.Weather))
	return sb.String()
}

func describePart(p compose.Part) string {
	if p.Detail == "" {
		return string(p.Outcome)
	}
	return fmt.Sprintf("%s (%s)", p.Outcome, p.Detail)
}
