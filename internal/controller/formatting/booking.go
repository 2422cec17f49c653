package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// FormatBooking renders a booking as a chat message block
func FormatBooking(b *model.Booking) string {
	status := GetBookingStatusDisplay(b.Status)
	kind := GetSessionKindDisplay(b.Kind)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Booking #%d\n", status.Emoji, b.ID)
	fmt.Fprintf(&sb, "📚 Discipline: %d\n", b.DisciplineID)
	fmt.Fprintf(&sb, "📅 When: %s UTC\n", FormatDateTime(b.ScheduledAt))
	fmt.Fprintf(&sb, "%s Kind: %s\n", kind.Emoji, kind.Text)
	fmt.Fprintf(&sb, "📝 Subject: %s\n", b.Subject)
	fmt.Fprintf(&sb, "📊 Status: %s", status.Text)
	if b.IsVirtual() && b.MeetingLink != nil {
		fmt.Fprintf(&sb, "\n🔗 Link: %s", *b.MeetingLink)
	}
	return sb.String()
}

// FormatSlot renders a recurring slot as a single line
func FormatSlot(s *model.RecurringSlot) string {
	line := fmt.Sprintf("#%d %s %s, discipline %d, monitor %d",
		s.ID,
		GetWeekdayName(s.Weekday),
		FormatTimeRange(s.Start, s.End),
		s.DisciplineID,
		s.MonitorID,
	)
	if s.Location != "" {
		line += " @ " + s.Location
	}
	return line
}
