package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Timestamp represents a position in a video in HH:MM:SS format
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// timestampRegex matches HH:MM:SS format
var timestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// ParseTimestamp parses a timestamp string in strict HH:MM:SS format
func ParseTimestamp(s string) (Timestamp, error) {
	matches := timestampRegex.FindStringSubmatch(s)
	if matches == nil {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp format %q: expected HH:MM:SS", ErrValidation, s)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	return newTimestamp(s, hours, minutes, seconds)
}

// NormalizeTimestamp accepts "ss", "mm:ss" or "HH:MM:SS" and returns the
// equivalent Timestamp. Components after the first may not exceed 59.
func NormalizeTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp format %q: expected ss, mm:ss or HH:MM:SS", ErrValidation, s)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp format %q: expected ss, mm:ss or HH:MM:SS", ErrValidation, s)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Timestamp{}, fmt.Errorf("%w: invalid timestamp format %q: expected ss, mm:ss or HH:MM:SS", ErrValidation, s)
		}
		values[i] = n
	}

	switch len(values) {
	case 1:
		return FromSeconds(values[0]), nil
	case 2:
		return newTimestamp(s, 0, values[0], values[1])
	default:
		return newTimestamp(s, values[0], values[1], values[2])
	}
}

// FromSeconds converts a non-negative number of seconds into a Timestamp
func FromSeconds(total int) Timestamp {
	if total < 0 {
		total = 0
	}
	return Timestamp{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

func newTimestamp(raw string, hours, minutes, seconds int) (Timestamp, error) {
	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp %q: minutes must be 0-59", ErrValidation, raw)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("%w: invalid timestamp %q: seconds must be 0-59", ErrValidation, raw)
	}
	return Timestamp{Hours: hours, Minutes: minutes, Seconds: seconds}, nil
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// IsZero returns true if the timestamp is 00:00:00
func (t Timestamp) IsZero() bool {
	return t.TotalSeconds() == 0
}

// Before returns true if t is before other
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}

// After returns true if t is after other
func (t Timestamp) After(other Timestamp) bool {
	return t.TotalSeconds() > other.TotalSeconds()
}
