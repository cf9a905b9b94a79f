package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Разделитель расписания и текста в строке объявления
const announcementSep = "|"

// Расписание в виде стандартного cron выражения ("50 8 * * 1-5") или короткого "08:50" (каждый день)
func ParseSchedule(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)

	if t, err := time.Parse("15:04", spec); err == nil {
		spec = fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	return schedule, nil
}

// Строки вида "<расписание>|<текст>"
func ParseAnnouncements(lines []string) ([]Announcement, error) {
	announcements := make([]Announcement, 0, len(lines))

	for _, line := range lines {
		spec, message, ok := strings.Cut(line, announcementSep)
		if !ok || strings.TrimSpace(message) == "" {
			return nil, fmt.Errorf("announcement %q: expected \"<schedule>|<message>\"", line)
		}

		schedule, err := ParseSchedule(spec)
		if err != nil {
			return nil, err
		}

		announcements = append(announcements, Announcement{
			Spec:     strings.TrimSpace(spec),
			Schedule: schedule,
			Message:  strings.TrimSpace(message),
		})
	}

	return announcements, nil
}
