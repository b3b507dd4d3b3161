package scheduler

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeSpec is returned for a spec that matches none of the
// accepted shapes.
var ErrInvalidTimeSpec = errors.New("invalid time spec")

// Resolved is the outcome of parsing one time spec.
type Resolved struct {
	ExecuteAt time.Time
	// Duration is set only for the hours-from-now shape; it feeds
	// based-on-last-post recomputation and the "closed after N days"
	// history wording.
	Duration *int
}

var clockTimeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// ResolveTimeSpec converts a raw spec into an absolute UTC timestamp.
//
// Accepted shapes:
//   - "72" (or any integer): hours from now
//   - "13:00": next occurrence of that wall time in the caller's zone
//   - "2013-11-22 5:00": caller-local timestamp
//   - "2013-11-25T01:35:00-08:00": timestamp with explicit offset
//
// offsetMinutes shifts zone-less shapes from the caller's local time to
// UTC; it is ignored for the hours shape and for timestamps that carry
// their own offset.
func ResolveTimeSpec(raw string, now time.Time, offsetMinutes int) (Resolved, error) {
	raw = strings.TrimSpace(raw)
	now = now.UTC()
	offset := time.Duration(offsetMinutes) * time.Minute

	if hours, err := strconv.Atoi(raw); err == nil {
		d := hours
		return Resolved{
			ExecuteAt: now.Add(time.Duration(hours) * time.Hour),
			Duration:  &d,
		}, nil
	}

	if clockTimeRe.MatchString(raw) {
		wall, err := time.Parse("15:04", raw)
		if err != nil {
			return Resolved{}, ErrInvalidTimeSpec
		}
		at := time.Date(now.Year(), now.Month(), now.Day(),
			wall.Hour(), wall.Minute(), 0, 0, time.UTC).Add(offset)
		if !at.After(now) {
			at = at.Add(24 * time.Hour)
		}
		return Resolved{ExecuteAt: at}, nil
	}

	if at, err := time.Parse(time.RFC3339, raw); err == nil {
		return Resolved{ExecuteAt: at.UTC()}, nil
	}

	for _, layout := range []string{"2006-1-2 15:04:05", "2006-1-2 15:04"} {
		if at, err := time.Parse(layout, raw); err == nil {
			return Resolved{ExecuteAt: at.UTC().Add(offset)}, nil
		}
	}

	return Resolved{}, ErrInvalidTimeSpec
}
