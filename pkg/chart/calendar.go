package chart

import (
	"fmt"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
)

// CalendarEvent is one all-day event for the calendar widget: the day's
// total recorded minutes.
type CalendarEvent struct {
	Title   string `json:"title"`
	Start   string `json:"start"`
	End     string `json:"end"`
	AllDay  bool   `json:"allDay"`
	Display string `json:"display"`
}

// CalendarEvents turns per-day totals into all-day calendar events titled
// with the rounded minute total.
func CalendarEvents(totals []aggregate.DayTotal) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(totals))
	for _, t := range totals {
		day := dayLabel(t.Date)
		events = append(events, CalendarEvent{
			Title:   fmt.Sprintf("🟢 %d min", int(t.Minutes)),
			Start:   day,
			End:     day,
			AllDay:  true,
			Display: "block",
		})
	}
	return events
}
