package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = "📚 Commands:\n\n" +
	"/mybookings - Sessions you requested\n" +
	"/queue - Requests waiting for you (monitors and professors)\n" +
	"/confirm <id> - Confirm a request (monitors)\n" +
	"/cancel <id> - Cancel a booking\n" +
	"/slots [discipline] - Weekly office hours\n" +
	"/help - Show this help"

// HandleStart greets the user and tells whether the account is linked
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if _, err := h.resolveCaller(ctx, update.Message.From.ID); err != nil {
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"👋 Hi, "+update.Message.From.FirstName+"!\n\n"+msgNotLinked)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"👋 Hi, "+update.Message.From.FirstName+"!\n\n"+helpText)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}
