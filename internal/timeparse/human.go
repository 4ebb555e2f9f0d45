package timeparse

import (
	"fmt"
	"strings"

	"github.com/abramin/wattson/internal/domain"
)

// FormatHuman renders ts for user-facing replies, e.g. DAY "2025-10-14"
// becomes "2025年10月14日" and WEEK "2025 W41" becomes "2025年第 41 周".
// Ranges render as "A ~ B". An empty ts renders as "（时间未指定）";
// malformed input is returned unchanged.
func FormatHuman(ts string, tt domain.TimeType) string {
	if strings.TrimSpace(ts) == "" {
		return "（时间未指定）"
	}
	if start, end, ok := SplitRange(ts); ok {
		return humanPoint(start, tt) + " ~ " + humanPoint(end, tt)
	}
	return humanPoint(strings.TrimSpace(ts), tt)
}

func humanPoint(ts string, tt domain.TimeType) string {
	switch tt {
	case domain.TimeHour:
		t, err := PointTime(ts, tt)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年%d月%d日 %d点", t.Year(), t.Month(), t.Day(), t.Hour())
	case domain.TimeShift:
		day, name, ok := splitTail(ts)
		if !ok || shiftIndex(name) < 0 {
			return ts
		}
		t, err := parseLayout(layoutDay, day)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), t.Month(), t.Day(), name)
	case domain.TimeDay:
		t, err := PointTime(ts, tt)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年%d月%d日", t.Year(), t.Month(), t.Day())
	case domain.TimeWeek:
		year, wk, err := parseWeek(ts)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年第 %d 周", year, wk)
	case domain.TimeMonth:
		t, err := PointTime(ts, tt)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年%d月", t.Year(), t.Month())
	case domain.TimeQuarter:
		year, q, err := parseQuarter(ts)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年第 %d 季度", year, q)
	case domain.TimeTendays:
		t, name, err := parseTendays(ts)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年%d月%s", t.Year(), t.Month(), name)
	case domain.TimeYear:
		t, err := PointTime(ts, tt)
		if err != nil {
			return ts
		}
		return fmt.Sprintf("%d年", t.Year())
	default:
		return ts
	}
}
