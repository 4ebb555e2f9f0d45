package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
)

// historyTail limits how many prior exchanges the prompt carries.
const historyTail = 6

// buildClassifySystemPrompt instructs the LLM to extract intents and
// indicator/time slots from one turn of an energy metrics conversation.
func buildClassifySystemPrompt(now time.Time) string {
	isoYear, isoWeek := now.ISOWeek()
	return fmt.Sprintf(`你是能源指标问答系统的意图解析助手，负责从用户输入中提取"意图"、"指标名称"和"时间信息"。
当前系统时间为：%s（ISO周：%d W%02d）。

请严格输出 JSON：
{
  "intent_list": ["..."],
  "indicators": [
    {"indicator": "...", "timeString": "...", "timeType": "..."}
  ]
}

intent_list 的每一项必须是以下之一：
- single_query: 查询单个指标在某个时间的数值
- compare: 对比两个指标或两个时间的数值
- trend: 查询指标在一段时间内的变化趋势（如"趋势"、"走势"、"变化"）
- list_query: 汇总或统计查询，一次列出多个对象的数值
- slot_fill: 只补充时间或指标，延续上一轮未完成的查询
- clarify: 对上一轮给出的候选列表做出选择，或输入无法归入以上意图

indicator 提取规则：
1. indicator 必须保留原文，包括数字和文字，不要丢失任何信息。
   - 数字紧跟在指标词中（如"2030酸轧纯水使用量"、"1#高炉"）时属于指标的一部分，不是时间。
   - 只有数字后面带有"年""月份""月""周""季度""日"等时间修饰词时才视为时间。
   - 指标中的性质修饰词（如"累计"、"计划"、"目标"、"实绩"、"用量"、"成本"、"效率"、"单耗"）必须保留。
   - "#""$"属于指标的一部分（如"1#高炉"）。
2. 如果输入只包含时间（如"昨天"、"今年三月份"、"2022年5月20日"），indicator 设为 null。
3. 班次词（早班、白班、中班、夜班、晚班）属于时间，不属于指标。
4. 若输入提到多个指标（如"1#和2#高炉工序能耗"），indicators 按提及顺序逐个列出。

timeString 必须按 timeType 精确格式化：
- HOUR → "YYYY-MM-DD HH"
- SHIFT → "YYYY-MM-DD 早班/白班/夜班"（班次优先级高于 HOUR）
- DAY → "YYYY-MM-DD"
- WEEK → "YYYY W##"（ISO 周号，周一为一周开始）
- MONTH → "YYYY-MM"（只说月份时补当前年份）
- QUARTER → "YYYY Q#"
- TENDAYS → "YYYY-MM 上旬/中旬/下旬"
- YEAR → "YYYY"
相对时间（今天、昨天、上周、本月、去年等）基于当前系统时间推算。
"X月Y日"优先判定为 DAY。若原文不包含时间或无法推算，timeString 和 timeType 均为 null，不要私自赋予时间。

区间时间统一输出 "开始~结束"，timeType 取区间的粒度：
- "今年1月到3月" → timeString="%d-01~%d-03"、timeType="MONTH"
- "上半年" → timeString="%d-01~%d-06"、timeType="MONTH"
- "2024-09-01~2024-09-07" → timeType="DAY"
只有明确描述区间时才使用区间方式，否则一律使用时间点方式。

严格规则：
1. 只输出 JSON 对象，不要任何解释、注释或 markdown 围栏
2. intent_list 至少包含一个意图
3. timeType 只能取 [HOUR,SHIFT,DAY,WEEK,MONTH,QUARTER,TENDAYS,YEAR] 或 null
4. 没有提到指标时 indicators 仍要输出一项，indicator 为 null`,
		now.Format("2006-01-02 15:04"), isoYear, isoWeek,
		now.Year(), now.Year(), now.Year(), now.Year())
}

// buildClassifyUserPrompt assembles the conversational context followed by
// the raw turn text.
func buildClassifyUserPrompt(input string, snap *domain.IntentSnapshot, history []graph.Exchange) string {
	var b strings.Builder

	if len(history) > historyTail {
		history = history[len(history)-historyTail:]
	}
	if len(history) > 0 {
		b.WriteString("历史对话:\n")
		for i, h := range history {
			fmt.Fprintf(&b, "%d. 问: %s | 答: %s\n", i+1, h.Ask, h.Reply)
		}
		b.WriteString("\n")
	}

	if summary := snapshotSummary(snap); summary != "" {
		b.WriteString("当前上下文:\n")
		b.WriteString(summary)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "当前用户输入: %q", input)
	return b.String()
}

// snapshotSummary renders the in-progress entries so the model can tell a
// continuation from a fresh query.
func snapshotSummary(snap *domain.IntentSnapshot) string {
	if snap == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range snap.Indicators {
		fmt.Fprintf(&b, "- 指标: %s | 时间: %s | 状态: %s\n",
			domain.CoalesceStr(e.Indicator, "无"),
			domain.StrFromPtrWithDefault(e.TimeString, "无"),
			e.Status)
	}
	if snap.PendingTime != nil {
		fmt.Fprintf(&b, "- 待分配时间: %s (%s)\n", snap.PendingTime.TimeString, snap.PendingTime.TimeType)
	}
	if last := snap.LastIntent(); last != "" {
		fmt.Fprintf(&b, "- 上一轮意图: %s\n", last)
	}
	return b.String()
}
