package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const (
	msgInternal     = "❌ Something went wrong. Please try again later."
	msgNotLinked    = "❌ Your Telegram account is not linked to a platform user."
	msgNotFound     = "❌ Not found."
	msgForbidden    = "⛔ You are not allowed to do that."
	msgTransition   = "⚠️ The booking can no longer change to that status."
	msgConflict     = "⚠️ That time is already taken."
	msgUpstream     = "⚠️ Could not create the meeting link. Please try again."
	msgUsageConfirm = "Usage: /confirm <booking id>"
	msgUsageCancel  = "Usage: /cancel <booking id>"
)

var errUsage = errors.New("usage")

// errorText turns a service error into a chat reply
func errorText(err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return string(usage)
	case errors.Is(err, model.ErrInvalidTransition):
		return msgTransition
	case errors.Is(err, model.ErrNotFound):
		return msgNotFound
	case errors.Is(err, model.ErrConflict):
		return msgConflict
	case errors.Is(err, model.ErrForbidden):
		return msgForbidden
	case errors.Is(err, model.ErrUpstream):
		return msgUpstream
	case errors.Is(err, model.ErrValidation):
		return "⚠️ " + err.Error()
	case errors.Is(err, model.ErrUnauthenticated):
		return msgNotLinked
	}
	return msgInternal
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (e usageError) Unwrap() error { return errUsage }

// commandArgs returns the words after the command itself
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// parseIDArg reads the single numeric argument of commands like "/confirm 42"
func parseIDArg(text, usage string) (int64, error) {
	args := commandArgs(text)
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
