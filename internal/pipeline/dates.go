package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format every source and file name uses.
const DateLayout = "2006-01-02"

// ResolveDate turns "today", "yesterday" (also the empty string) or a
// YYYY-MM-DD date into a YYYY-MM-DD date relative to now.
func ResolveDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yesterday":
		return now.AddDate(0, 0, -1).Format(DateLayout), nil
	case "today":
		return now.Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("date %q: want today, yesterday or YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}
