package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinDuration is the floor for new giveaways. Anything shorter is almost
// certainly a typo in the duration string.
const MinDuration = 5 * time.Second

var durationToken = regexp.MustCompile(`(?i)(\d+)\s*([dhms])`)

// ParseCompactDuration parses compact human durations like "1h30m", "45m"
// or "2d". Tokens may repeat and combine in any order; contributions are
// summed. Unrecognized trailing text is ignored; an input with no
// recognized tokens yields zero.
func ParseCompactDuration(s string) time.Duration {
	var total time.Duration
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "d":
			total += time.Duration(v) * 24 * time.Hour
		case "h":
			total += time.Duration(v) * time.Hour
		case "m":
			total += time.Duration(v) * time.Minute
		case "s":
			total += time.Duration(v) * time.Second
		}
	}
	return total
}

// FormatDelta renders a duration the way the countdown embeds show it,
// e.g. "1d 2h 3m 4s". Seconds are always present; larger units only when
// non-zero. Negative inputs render as "0s".
func FormatDelta(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	days := s / 86400
	hours := (s % 86400) / 3600
	mins := (s % 3600) / 60
	secs := s % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))
	return strings.Join(parts, " ")
}
