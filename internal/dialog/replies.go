package dialog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/timeparse"
)

// User-facing reply strings. Kept in one place so the wording stays
// consistent across handlers; surfaces render these verbatim.

func replyAskIndicator() string {
	return "请告诉我您要查询的指标名称。"
}

func replyAskTime(verb, indicator string) string {
	return fmt.Sprintf("好的，要%s【%s】，请告诉我时间。", verb, indicator)
}

func replyAskTimeUnclear() string {
	return "我没看懂这个时间，请再具体一点（例如 2024-10 或 2024-10-01）。"
}

func replyCandidates(fragment string, candidates []domain.FormulaCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "没有完全匹配的【%s】，请选择编号（或重新输入更精确的名称）：", fragment)
	for _, c := range candidates {
		fmt.Fprintf(&b, "\n%d) %s（匹配度 %.4f）", c.Number, c.FormulaName, c.Score)
	}
	return b.String()
}

func replyNarrowed(reply string, candidates []domain.FormulaCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "按「%s」找到多个指标，请选择编号：", reply)
	for _, c := range candidates {
		fmt.Fprintf(&b, "\n%d) %s", c.Number, c.FormulaName)
	}
	return b.String()
}

func replyInvalidOrdinal(max int) string {
	return fmt.Sprintf("编号超出范围，请输入 1 到 %d 之间的序号。", max)
}

func replyNoFormula() string {
	return "未找到匹配公式，请重新输入指标。"
}

func replyValue(e *domain.IndicatorEntry) string {
	ht := humanTimeOf(e)
	return fmt.Sprintf("%s 在 %s 的值是 %s。", e.Indicator, ht, domain.StrFromPtrWithDefault(e.Value, ""))
}

func replyValues(entries []*domain.IndicatorEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, replyValue(e))
	}
	return strings.Join(lines, "\n")
}

func replyQueryFailed() string {
	return "查询平台数据时出了点问题，请稍后再试。"
}

func replyNotUnderstood() string {
	return "我没有理解您的意思，请换个说法，或告诉我指标名称和时间。"
}

func replyUnderstandingDown() string {
	return "理解服务暂时不可用，请稍后再试。"
}

func replyTurnFailed() string {
	return "这轮处理失败了，内容未记录，请再试一次。"
}

func replyCompareTooMany() string {
	return "当前只支持两项对比，请提供两个要对比的指标，或改问趋势/分析。"
}

func replyCompareNoBase() string {
	return "还没有可以对比的历史查询，请先完成一次查询。"
}

func replyCompareNotEnough() string {
	return "历史查询不足两条，无法进行对比，请先完成两次查询。"
}

func replyTrendMinGranularity() string {
	return "该时间粒度无法展开成趋势，请提供一个时间范围（例如 2025-01~2025-06）。"
}

func replyTrendRangeTooWide() string {
	return fmt.Sprintf("时间范围太大，最多支持 %d 个数据点，请缩小范围。", timeparse.MaxTrendBuckets)
}

// compareText renders the comparison sentence recorded on the relation and
// echoed to the user, e.g.
// "2022年3月，高炉工序能耗实绩报出值低于高炉工序能耗计划报出值，相差2.1523。"
func compareText(left, right *domain.IndicatorEntry) string {
	ht := humanTimeOf(left)
	lv, lerr := strconv.ParseFloat(domain.StrFromPtrWithDefault(left.Value, ""), 64)
	rv, rerr := strconv.ParseFloat(domain.StrFromPtrWithDefault(right.Value, ""), 64)
	if lerr != nil || rerr != nil {
		return fmt.Sprintf("%s，%s 为 %s，%s 为 %s。",
			ht, left.Indicator, domain.StrFromPtrWithDefault(left.Value, ""),
			right.Indicator, domain.StrFromPtrWithDefault(right.Value, ""))
	}
	switch {
	case lv > rv:
		return fmt.Sprintf("%s，%s高于%s，相差%.4f。", ht, left.Indicator, right.Indicator, lv-rv)
	case lv < rv:
		return fmt.Sprintf("%s，%s低于%s，相差%.4f。", ht, left.Indicator, right.Indicator, rv-lv)
	default:
		return fmt.Sprintf("%s，%s与%s持平。", ht, left.Indicator, right.Indicator)
	}
}

// trendPoint is one queried bucket of a trend walk, in time order.
type trendPoint struct {
	bucket string
	value  string
}

func replyTrend(indicator, rangeTS string, tt domain.TimeType, points []trendPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "【%s】%s 趋势：", indicator, timeparse.FormatHuman(rangeTS, tt))
	for _, p := range points {
		fmt.Fprintf(&b, "\n%s：%s", timeparse.FormatHuman(p.bucket, tt), p.value)
	}
	b.WriteString("\n")
	b.WriteString(trendSummary(points))
	return b.String()
}

// trendSummary states the overall direction between the first and last
// bucket as a percentage of the first.
func trendSummary(points []trendPoint) string {
	if len(points) < 2 {
		return "数据点不足，无法判断趋势。"
	}
	first, ferr := strconv.ParseFloat(points[0].value, 64)
	last, lerr := strconv.ParseFloat(points[len(points)-1].value, 64)
	if ferr != nil || lerr != nil || first == 0 {
		return "整体趋势：无法计算。"
	}
	pct := (last - first) / first * 100
	switch {
	case pct > 1e-9:
		return fmt.Sprintf("整体趋势：上升（%.1f%%）。", pct)
	case pct < -1e-9:
		return fmt.Sprintf("整体趋势：下降（%.1f%%）。", math.Abs(pct))
	default:
		return "整体趋势：持平。"
	}
}

func humanTimeOf(e *domain.IndicatorEntry) string {
	ts := domain.StrFromPtrWithDefault(e.TimeString, "")
	if e.TimeType == nil {
		return ts
	}
	return timeparse.FormatHuman(ts, *e.TimeType)
}
