package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

func FormatDateTime(t time.Time) string {
	return t.UTC().Format("02.01.2006 15:04")
}

func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// GetWeekdayName returns the English name of a working day
func GetWeekdayName(weekday time.Weekday) string {
	if !model.IsWorkingDay(weekday) {
		return "Unknown"
	}
	return weekday.String()
}
