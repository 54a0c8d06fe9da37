package parser

import (
	"strings"
	"time"
)

// monthNames maps Russian month names in the genitive case to months.
var monthNames = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

// minDateTokens is day, month, year and at least one time-of-day token.
const minDateTokens = 4

// ParseDate parses "<day> <month-name> <year> <time...>" such as
// "15 марта 2024 10:00:00" into the calendar day at 00:00 UTC.
// It never panics: any input outside that shape returns false.
func ParseDate(s string) (time.Time, bool) {
	parts := strings.Fields(s)
	if len(parts) < minDateTokens {
		return time.Time{}, false
	}

	day, ok := parseLeadingInt(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := monthNames[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseLeadingInt(parts[2])
	if !ok {
		return time.Time{}, false
	}

	if day < 1 || day > 31 || year < 1 || year > 9999 {
		return time.Time{}, false
	}

	t := time.Date(int(year), month, int(day), 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 February becomes 2 March); treat that as invalid.
	if t.Day() != int(day) || t.Month() != month {
		return time.Time{}, false
	}

	return t, true
}

// parseLeadingInt parses an optional sign followed by a run of decimal
// digits at the start of s, ignoring anything after the digits.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		// Clamp instead of overflowing on absurd inputs.
		if n > (1<<62)/10 {
			n = 1 << 62
		} else {
			n = n*10 + int64(c-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}

	if neg {
		n = -n
	}
	return n, true
}
