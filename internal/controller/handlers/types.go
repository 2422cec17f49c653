package handlers

import (
	"context"

	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"go.uber.org/zap"
)

// Identity maps a Telegram account to a platform user
type Identity interface {
	UserIDByTelegram(ctx context.Context, telegramID int64) (int64, error)
}

// Handlers holds the dependencies of the chat commands
type Handlers struct {
	bookings *service.BookingService
	slots    *service.SlotService
	identity Identity
	logger   *zap.Logger
}

func NewHandlers(
	bookings *service.BookingService,
	slots *service.SlotService,
	identity Identity,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		bookings: bookings,
		slots:    slots,
		identity: identity,
		logger:   logger,
	}
}
