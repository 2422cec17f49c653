package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleMyBookings lists the caller's own requests
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(caller service.Caller) (string, error) {
		return h.myBookingsText(ctx, caller)
	})
}

// HandleQueue lists the awaiting requests in the caller's scope
func (h *Handlers) HandleQueue(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(caller service.Caller) (string, error) {
		return h.queueText(ctx, caller)
	})
}

func (h *Handlers) HandleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(caller service.Caller) (string, error) {
		return h.confirmText(ctx, caller, update.Message.Text)
	})
}

func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(caller service.Caller) (string, error) {
		return h.cancelText(ctx, caller, update.Message.Text)
	})
}

func (h *Handlers) myBookingsText(ctx context.Context, caller service.Caller) (string, error) {
	bookings, err := h.listBookings(ctx, caller, service.ViewMine, model.BookingFilter{})
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return "📭 You have no bookings yet.", nil
	}
	return renderBookings("📅 Your bookings", bookings), nil
}

func (h *Handlers) queueText(ctx context.Context, caller service.Caller) (string, error) {
	bookings, err := h.listBookings(ctx, caller, service.ViewAuto, model.BookingFilter{
		Status: model.BookingStatusAwaiting,
	})
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return "📭 Nothing is waiting for confirmation.", nil
	}
	return renderBookings("⏳ Waiting for confirmation", bookings), nil
}

func (h *Handlers) confirmText(ctx context.Context, caller service.Caller, text string) (string, error) {
	id, err := parseIDArg(text, msgUsageConfirm)
	if err != nil {
		return "", err
	}

	booking, err := h.bookings.Confirm(ctx, caller, id)
	if err != nil {
		return "", err
	}
	return "✅ Confirmed\n\n" + formatting.FormatBooking(booking), nil
}

func (h *Handlers) cancelText(ctx context.Context, caller service.Caller, text string) (string, error) {
	id, err := parseIDArg(text, msgUsageCancel)
	if err != nil {
		return "", err
	}

	booking, err := h.bookings.Cancel(ctx, caller, id)
	if err != nil {
		return "", err
	}
	return "❌ Cancelled\n\n" + formatting.FormatBooking(booking), nil
}

func (h *Handlers) listBookings(ctx context.Context, caller service.Caller, view service.ListView, filter model.BookingFilter) ([]*model.Booking, error) {
	seq, err := h.bookings.List(ctx, caller, view, filter)
	if err != nil {
		return nil, err
	}
	return service.Collect(seq)
}

func renderBookings(title string, bookings []*model.Booking) string {
	blocks := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		blocks = append(blocks, formatting.FormatBooking(booking))
	}
	return fmt.Sprintf("%s (%s)\n\n%s", title, plural(len(bookings), "booking"), strings.Join(blocks, "\n\n"))
}
