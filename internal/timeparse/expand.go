package timeparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/abramin/wattson/internal/domain"
)

// MaxTrendBuckets caps how many points a trend range may enumerate.
const MaxTrendBuckets = 36

// expandsTo maps a point granularity to the bucket granularity its trend
// range is expressed in. HOUR and SHIFT are absent: they cannot widen.
var expandsTo = map[domain.TimeType]domain.TimeType{
	domain.TimeYear:    domain.TimeMonth,
	domain.TimeQuarter: domain.TimeMonth,
	domain.TimeMonth:   domain.TimeDay,
	domain.TimeWeek:    domain.TimeDay,
	domain.TimeTendays: domain.TimeDay,
	domain.TimeDay:     domain.TimeHour,
}

// ExpandToRange widens a single time point into a "start~end" range one
// granularity finer, for trend queries. A ts that is already a range is
// returned unchanged with its own granularity. HOUR and SHIFT report
// ErrMinGranularity. A YEAR equal to now's year only runs through now's
// month; past and future years run January through December.
func ExpandToRange(ts string, tt domain.TimeType, now time.Time) (string, domain.TimeType, error) {
	ts = strings.TrimSpace(ts)
	if IsRange(ts) {
		return ts, tt, nil
	}
	target, ok := expandsTo[tt]
	if !ok {
		if tt == domain.TimeHour || tt == domain.TimeShift {
			return "", "", ErrMinGranularity
		}
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTimeType, tt)
	}
	switch tt {
	case domain.TimeYear:
		t, err := PointTime(ts, tt)
		if err != nil {
			return "", "", err
		}
		endMonth := time.December
		if t.Year() == now.Year() {
			endMonth = now.Month()
		}
		return fmt.Sprintf("%04d-01~%04d-%02d", t.Year(), t.Year(), endMonth), target, nil
	case domain.TimeQuarter:
		year, q, err := parseQuarter(ts)
		if err != nil {
			return "", "", err
		}
		first := (q-1)*3 + 1
		return fmt.Sprintf("%04d-%02d~%04d-%02d", year, first, year, first+2), target, nil
	case domain.TimeMonth:
		t, err := PointTime(ts, tt)
		if err != nil {
			return "", "", err
		}
		last := t.AddDate(0, 1, -1)
		return t.Format(layoutDay) + "~" + last.Format(layoutDay), target, nil
	case domain.TimeWeek:
		year, wk, err := parseWeek(ts)
		if err != nil {
			return "", "", err
		}
		mon := isoWeekStart(year, wk)
		return mon.Format(layoutDay) + "~" + mon.AddDate(0, 0, 6).Format(layoutDay), target, nil
	case domain.TimeTendays:
		t, name, err := parseTendays(ts)
		if err != nil {
			return "", "", err
		}
		end := t.AddDate(0, 0, 9)
		if name == "下旬" {
			end = time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		}
		return t.Format(layoutDay) + "~" + end.Format(layoutDay), target, nil
	case domain.TimeDay:
		t, err := PointTime(ts, tt)
		if err != nil {
			return "", "", err
		}
		d := t.Format(layoutDay)
		return d + " 00~" + d + " 23", target, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownTimeType, tt)
}

// Buckets enumerates the points of a "start~end" range at its own
// granularity, in time order, capped at MaxTrendBuckets. A single point
// yields itself. SHIFT ranges cannot be enumerated.
func Buckets(ts string, tt domain.TimeType) ([]string, error) {
	ts = strings.TrimSpace(ts)
	start, end, ok := SplitRange(ts)
	if !ok {
		if err := Validate(ts, tt); err != nil {
			return nil, err
		}
		return []string{ts}, nil
	}
	if tt == domain.TimeShift {
		return nil, ErrMinGranularity
	}
	st, err := PointTime(start, tt)
	if err != nil {
		return nil, err
	}
	et, err := PointTime(end, tt)
	if err != nil {
		return nil, err
	}
	if et.Before(st) {
		return nil, fmt.Errorf("%w: range end %q before start %q", ErrMalformedTime, end, start)
	}
	var out []string
	for cur := st; !cur.After(et); cur = step(cur, tt) {
		out = append(out, formatPoint(cur, tt))
		if len(out) > MaxTrendBuckets {
			return nil, fmt.Errorf("%w: more than %d %s buckets in %q", ErrRangeTooWide, MaxTrendBuckets, tt, ts)
		}
	}
	return out, nil
}

func step(t time.Time, tt domain.TimeType) time.Time {
	switch tt {
	case domain.TimeHour:
		return t.Add(time.Hour)
	case domain.TimeWeek:
		return t.AddDate(0, 0, 7)
	case domain.TimeMonth:
		return t.AddDate(0, 1, 0)
	case domain.TimeQuarter:
		return t.AddDate(0, 3, 0)
	case domain.TimeYear:
		return t.AddDate(1, 0, 0)
	case domain.TimeTendays:
		if t.Day() == 1 || t.Day() == 11 {
			return t.AddDate(0, 0, 10)
		}
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// formatPoint renders the canonical string for the bucket starting at t.
func formatPoint(t time.Time, tt domain.TimeType) string {
	switch tt {
	case domain.TimeHour:
		return t.Format(layoutHour)
	case domain.TimeWeek:
		y, wk := t.ISOWeek()
		return fmt.Sprintf("%d W%02d", y, wk)
	case domain.TimeMonth:
		return t.Format(layoutMonth)
	case domain.TimeQuarter:
		return fmt.Sprintf("%d Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case domain.TimeTendays:
		name := "上旬"
		switch {
		case t.Day() >= 21:
			name = "下旬"
		case t.Day() >= 11:
			name = "中旬"
		}
		return t.Format(layoutMonth) + " " + name
	case domain.TimeYear:
		return t.Format(layoutYear)
	default:
		return t.Format(layoutDay)
	}
}
