// Package timeparse parses, validates, and expands the canonical time
// strings carried on indicator entries. Every granularity has exactly one
// string form (documented on domain.TimeType); a range joins two points
// of the same granularity with "~".
package timeparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abramin/wattson/internal/domain"
)

var (
	ErrUnknownTimeType = errors.New("unknown time granularity")
	ErrMalformedTime   = errors.New("malformed time string")
	ErrMinGranularity  = errors.New("time already at minimum granularity")
	ErrRangeTooWide    = errors.New("time range spans too many buckets")
)

const (
	layoutHour  = "2006-01-02 15"
	layoutDay   = "2006-01-02"
	layoutMonth = "2006-01"
	layoutYear  = "2006"
)

// shiftOrder lists shift names in within-day order.
var shiftOrder = []string{"早班", "白班", "中班", "晚班", "夜班"}

func shiftIndex(name string) int {
	for i, s := range shiftOrder {
		if s == name {
			return i
		}
	}
	return -1
}

// tendaysStartDay maps a ten-day period name to its first day of month.
var tendaysStartDay = map[string]int{"上旬": 1, "中旬": 11, "下旬": 21}

// IsRange reports whether ts holds a "start~end" pair. The full-width
// tilde is accepted as a separator.
func IsRange(ts string) bool {
	return strings.ContainsAny(ts, "~～")
}

// SplitRange splits a range into its two points, trimming surrounding
// spaces. ok is false when ts is not a range.
func SplitRange(ts string) (start, end string, ok bool) {
	left, right, found := strings.Cut(strings.ReplaceAll(ts, "～", "~"), "~")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(left), strings.TrimSpace(right), true
}

// Validate checks that ts matches the canonical form for tt. Ranges are
// accepted for every granularity; both ends must parse and be ordered.
func Validate(ts string, tt domain.TimeType) error {
	if !domain.IsValidTimeType(tt) {
		return fmt.Errorf("%w: %q", ErrUnknownTimeType, tt)
	}
	if strings.TrimSpace(ts) == "" {
		return fmt.Errorf("%w: empty time string", ErrMalformedTime)
	}
	if start, end, ok := SplitRange(ts); ok {
		st, err := PointTime(start, tt)
		if err != nil {
			return err
		}
		et, err := PointTime(end, tt)
		if err != nil {
			return err
		}
		if et.Before(st) {
			return fmt.Errorf("%w: range end %q before start %q", ErrMalformedTime, end, start)
		}
		return nil
	}
	_, err := PointTime(ts, tt)
	return err
}

// PointTime returns the UTC start instant of a single (non-range) bucket.
// Shifts of one day map to successive instants so they stay ordered.
func PointTime(ts string, tt domain.TimeType) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	switch tt {
	case domain.TimeHour:
		return parseLayout(layoutHour, ts)
	case domain.TimeDay:
		return parseLayout(layoutDay, ts)
	case domain.TimeMonth:
		return parseLayout(layoutMonth, ts)
	case domain.TimeYear:
		return parseLayout(layoutYear, ts)
	case domain.TimeShift:
		day, name, ok := splitTail(ts)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: want \"2006-01-02 早班\", got %q", ErrMalformedTime, ts)
		}
		idx := shiftIndex(name)
		if idx < 0 {
			return time.Time{}, fmt.Errorf("%w: unknown shift name %q", ErrMalformedTime, name)
		}
		t, err := parseLayout(layoutDay, day)
		if err != nil {
			return time.Time{}, err
		}
		return t.Add(time.Duration(idx) * time.Hour), nil
	case domain.TimeWeek:
		year, wk, err := parseWeek(ts)
		if err != nil {
			return time.Time{}, err
		}
		return isoWeekStart(year, wk), nil
	case domain.TimeQuarter:
		year, q, err := parseQuarter(ts)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	case domain.TimeTendays:
		t, _, err := parseTendays(ts)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimeType, tt)
	}
}

func parseLayout(layout, ts string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, ts, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: want %q, got %q", ErrMalformedTime, layout, ts)
	}
	return t, nil
}

// splitTail cuts a "date suffix" pair on the last space.
func splitTail(ts string) (head, tail string, ok bool) {
	i := strings.LastIndex(ts, " ")
	if i < 0 {
		return "", "", false
	}
	return ts[:i], strings.TrimSpace(ts[i+1:]), true
}

func parseWeek(ts string) (year, week int, err error) {
	f := strings.Fields(ts)
	if len(f) != 2 || !strings.HasPrefix(f[1], "W") {
		return 0, 0, fmt.Errorf("%w: want \"2006 W02\", got %q", ErrMalformedTime, ts)
	}
	year, err = strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad year in %q", ErrMalformedTime, ts)
	}
	week, err = strconv.Atoi(strings.TrimPrefix(f[1], "W"))
	if err != nil || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: bad week number in %q", ErrMalformedTime, ts)
	}
	return year, week, nil
}

func parseQuarter(ts string) (year, quarter int, err error) {
	f := strings.Fields(ts)
	if len(f) != 2 || !strings.HasPrefix(f[1], "Q") {
		return 0, 0, fmt.Errorf("%w: want \"2006 Q1\", got %q", ErrMalformedTime, ts)
	}
	year, err = strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad year in %q", ErrMalformedTime, ts)
	}
	quarter, err = strconv.Atoi(strings.TrimPrefix(f[1], "Q"))
	if err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("%w: bad quarter in %q", ErrMalformedTime, ts)
	}
	return year, quarter, nil
}

// parseTendays returns the first day of the named ten-day period.
func parseTendays(ts string) (time.Time, string, error) {
	head, name, ok := splitTail(ts)
	if !ok {
		return time.Time{}, "", fmt.Errorf("%w: want \"2006-01 上旬\", got %q", ErrMalformedTime, ts)
	}
	day, ok := tendaysStartDay[name]
	if !ok {
		return time.Time{}, "", fmt.Errorf("%w: unknown ten-day period %q", ErrMalformedTime, name)
	}
	t, err := parseLayout(layoutMonth, head)
	if err != nil {
		return time.Time{}, "", err
	}
	return t.AddDate(0, 0, day-1), name, nil
}

// isoWeekStart returns the Monday of the given ISO week. January 4 is
// always inside week 1 (ISO 8601).
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := jan4.AddDate(0, 0, 1-wd)
	return monday.AddDate(0, 0, (week-1)*7)
}
