package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const msgUsageSlots = "Usage: /slots [discipline id]"

// HandleSlots lists the weekly office hours, optionally for one discipline
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(caller service.Caller) (string, error) {
		return h.slotsText(ctx, caller, update.Message.Text)
	})
}

func (h *Handlers) slotsText(ctx context.Context, caller service.Caller, text string) (string, error) {
	var filter model.SlotFilter

	switch args := commandArgs(text); len(args) {
	case 0:
	case 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return "", usageError(msgUsageSlots)
		}
		filter.DisciplineIDs = []int64{id}
	default:
		return "", usageError(msgUsageSlots)
	}

	seq, err := h.slots.List(ctx, caller, filter)
	if err != nil {
		return "", err
	}
	slots, err := service.Collect(seq)
	if err != nil {
		return "", err
	}

	if len(slots) == 0 {
		return "📭 No office hours found.", nil
	}

	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		lines = append(lines, formatting.FormatSlot(slot))
	}
	return fmt.Sprintf("🗓 Office hours (%s)\n\n%s", plural(len(slots), "slot"), strings.Join(lines, "\n")), nil
}
