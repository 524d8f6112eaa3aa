package subscriptions

import (
	"strconv"
	"strings"
	"time"
)

// AddDuration derives a subscription end date from its start date and the
// raw requested duration string. Strings containing "month" advance by
// calendar months ("2 months"); everything else is treated as days
// ("30 days"). An unparseable leading integer counts as zero.
func AddDuration(start time.Time, duration string) time.Time {
	n := leadingInt(duration)
	if strings.Contains(strings.ToLower(duration), "month") {
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, n)
}

func leadingInt(value string) int {
	trimmed := strings.TrimSpace(value)
	end := 0
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return 0
	}
	return n
}
