package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler is a command handler with its registration details.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Description string
}

// RegisterAllCommands returns every bot command keyed by its slash name.
// All commands are restricted to the account owner.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	command := func(pattern, description string, h tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			Middleware:  adminMiddleware,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Description: description,
		}
	}

	handlers["/start"] = command("start", "Show what the bot does", NewStartHandler(deps))
	handlers["/help"] = command("help", "List commands", NewHelpHandler(deps))
	handlers["/preview"] = command("preview", "Show the profile fields without applying them", NewPreviewHandler(deps))
	handlers["/photo"] = command("photo", "Apply today's profile photo now", NewPhotoHandler(deps))

	return handlers
}
