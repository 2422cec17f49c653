package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireCaller resolves the platform user behind the message sender.
// It answers the chat itself and returns false when that is not possible.
func (h *Handlers) requireCaller(ctx context.Context, b *bot.Bot, update *models.Update) (service.Caller, bool) {
	if update.Message == nil || update.Message.From == nil {
		return service.Caller{}, false
	}

	caller, err := h.resolveCaller(ctx, update.Message.From.ID)
	if err != nil {
		if errors.Is(err, model.ErrUnauthenticated) {
			h.sendError(ctx, b, update.Message.Chat.ID, msgNotLinked)
			return service.Caller{}, false
		}
		h.logger.Error("Failed to resolve telegram user",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, msgInternal)
		return service.Caller{}, false
	}

	return caller, true
}

func (h *Handlers) resolveCaller(ctx context.Context, telegramID int64) (service.Caller, error) {
	userID, err := h.identity.UserIDByTelegram(ctx, telegramID)
	if err != nil {
		return service.Caller{}, err
	}
	return service.Caller{UserID: userID}, nil
}

// respond runs fn for the resolved caller and sends its text or error
func (h *Handlers) respond(ctx context.Context, b *bot.Bot, update *models.Update, fn func(service.Caller) (string, error)) {
	caller, ok := h.requireCaller(ctx, b, update)
	if !ok {
		return
	}

	text, err := fn(caller)
	if err != nil {
		if errorText(err) == msgInternal {
			h.logger.Error("Command failed",
				zap.String("text", update.Message.Text),
				zap.Int64("user_id", caller.UserID),
				zap.Error(err),
			)
		}
		h.sendError(ctx, b, update.Message.Chat.ID, errorText(err))
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}
