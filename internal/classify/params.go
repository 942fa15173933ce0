package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	isoDateRe  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	clockRe    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourRe     = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	hoursDurRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	minsDurRe  = regexp.MustCompile(`\b(\d+)\s*(?:minutes?|mins?)\b`)
	quotedRe   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	ordinalRe  = regexp.MustCompile(`\b(?:the\s+)?(first|second|third|fourth|fifth|1st|2nd|3rd|4th|5th)\s+(?:one|option|slot|event)\b`)
	numberedRe = regexp.MustCompile(`(?:#|option\s+|number\s+)(\d+)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var ordinalWords = map[string]int{
	"first": 1, "1st": 1,
	"second": 2, "2nd": 2,
	"third": 3, "3rd": 3,
	"fourth": 4, "4th": 4,
	"fifth": 5, "5th": 5,
}

// ExtractParams pulls slot-filling values out of an utterance: dates, times,
// durations, attendee addresses, quoted titles, and ordinal references.
// Relative expressions ("tomorrow", "next friday") are resolved against now,
// in now's location. Anything it cannot recognize is simply left zero; the
// router decides whether missing parameters warrant a clarification turn.
func ExtractParams(utterance string, now time.Time) Params {
	lower := strings.ToLower(utterance)
	var p Params

	p.Attendees = extractAttendees(utterance)
	p.Duration = extractDuration(lower)
	p.Ordinal = extractOrdinal(lower)

	if m := quotedRe.FindStringSubmatch(utterance); m != nil {
		if m[1] != "" {
			p.Title = m[1]
		} else {
			p.Title = m[2]
		}
	}

	day, hasDay := extractDate(lower, now)
	hour, min, hasTime := extractClock(lower)

	switch {
	case hasDay && hasTime:
		p.Start = time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, now.Location())
		p.HasTime = true
	case hasTime:
		p.Start = time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if p.Start.Before(now) {
			p.Start = p.Start.AddDate(0, 0, 1)
		}
		p.HasTime = true
	case hasDay:
		p.Start = day
	}

	if !p.Start.IsZero() && p.Duration > 0 {
		p.End = p.Start.Add(p.Duration)
	}

	return p
}

func extractAttendees(utterance string) []string {
	matches := emailRe.FindAllString(utterance, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		m = strings.ToLower(m)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func extractDuration(lower string) time.Duration {
	var d time.Duration
	if m := hoursDurRe.FindStringSubmatch(lower); m != nil {
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil {
			d += time.Duration(hours * float64(time.Hour))
		}
	}
	if m := minsDurRe.FindStringSubmatch(lower); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil {
			d += time.Duration(mins) * time.Minute
		}
	}
	if d == 0 {
		if strings.Contains(lower, "half an hour") || strings.Contains(lower, "half hour") {
			d = 30 * time.Minute
		} else if strings.Contains(lower, "an hour") {
			d = time.Hour
		}
	}
	return d
}

func extractDate(lower string, now time.Time) (time.Time, bool) {
	midnight := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	}

	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		dayNum, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), dayNum, 0, 0, 0, 0, now.Location()), true
	}
	if m := usDateRe.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		dayNum, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), dayNum, 0, 0, 0, 0, now.Location()), true
	}

	switch {
	case strings.Contains(lower, "today"):
		return midnight(now), true
	case strings.Contains(lower, "tomorrow"):
		return midnight(now.AddDate(0, 0, 1)), true
	}

	for name, wd := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		days := (int(wd) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7 // "friday" said on a Friday means the next one
		}
		return midnight(now.AddDate(0, 0, days)), true
	}

	return time.Time{}, false
}

func extractClock(lower string) (hour, min int, ok bool) {
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		min, _ = strconv.Atoi(m[2])
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return hour, min, hour < 24 && min < 60
	}
	if m := hourRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] == "pm" && hour < 12 {
			hour += 12
		}
		if m[2] == "am" && hour == 12 {
			hour = 0
		}
		return hour, 0, hour < 24
	}
	if strings.Contains(lower, "noon") {
		return 12, 0, true
	}
	if strings.Contains(lower, "midnight") {
		return 0, 0, true
	}
	return 0, 0, false
}

func extractOrdinal(lower string) int {
	if m := ordinalRe.FindStringSubmatch(lower); m != nil {
		return ordinalWords[m[1]]
	}
	if m := numberedRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}
