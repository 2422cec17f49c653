package formatting

import "github.com/Freeeeeet/tutoring_scheduler/internal/model"

// StatusDisplay is the emoji and label shown for a status or kind
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetBookingStatusDisplay returns how a booking status is shown in chat
func GetBookingStatusDisplay(status model.BookingStatus) StatusDisplay {
	displays := map[model.BookingStatus]StatusDisplay{
		model.BookingStatusAwaiting:  {"⏳", "Awaiting confirmation"},
		model.BookingStatusConfirmed: {"✅", "Confirmed"},
		model.BookingStatusCancelled: {"❌", "Cancelled"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Unknown"}
}

// GetSessionKindDisplay returns how a session kind is shown in chat
func GetSessionKindDisplay(kind model.SessionKind) StatusDisplay {
	displays := map[model.SessionKind]StatusDisplay{
		model.SessionKindInPerson: {"🏫", "In person"},
		model.SessionKindVirtual:  {"💻", "Online"},
	}

	if display, ok := displays[kind]; ok {
		return display
	}

	return StatusDisplay{"❓", "Unknown"}
}
