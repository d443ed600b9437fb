package remindersvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

const (
	icsTimeLayout = "20060102T150405Z"
	classDuration = time.Hour
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// calendarEvent renders a single-event iCalendar (RFC 5545) invite for the class.
func calendarEvent(d enrollment.DueReminder, appName string) string {
	start := d.ScheduledAt.UTC()
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		fmt.Sprintf("PRODID:-//%s//Class Reminder//EN", icsEscaper.Replace(appName)),
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@edumate", d.ClassSessionID),
		"DTSTAMP:" + core.Now().Format(icsTimeLayout),
		"DTSTART:" + start.Format(icsTimeLayout),
		"DTEND:" + start.Add(classDuration).Format(icsTimeLayout),
		"SUMMARY:" + icsEscaper.Replace(d.Title),
		"DESCRIPTION:" + icsEscaper.Replace(fmt.Sprintf("Class %d of %d: %s", d.SessionIndex+1, d.TotalClasses, d.Topic)),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}
