package domain

type EntryStatus string

const (
	EntryActive    EntryStatus = "active"
	EntryCompleted EntryStatus = "completed"
)

type SlotState string

const (
	SlotFilled  SlotState = "filled"
	SlotMissing SlotState = "missing"
)

// IntentName enumerates all intents the classifier can produce.
type IntentName string

const (
	IntentSingleQuery IntentName = "single_query"
	IntentCompare     IntentName = "compare"
	IntentTrend       IntentName = "trend"
	IntentListQuery   IntentName = "list_query"
	IntentSlotFill    IntentName = "slot_fill"
	IntentClarify     IntentName = "clarify"
)

// validIntents is the set of known intent names for validation.
var validIntents = map[IntentName]bool{
	IntentSingleQuery: true, IntentCompare: true, IntentTrend: true,
	IntentListQuery: true, IntentSlotFill: true, IntentClarify: true,
}

// IsValidIntent returns true if the given name is a known intent.
func IsValidIntent(name IntentName) bool {
	return validIntents[name]
}

type RelationType string

const (
	RelationCompare  RelationType = "compare"
	RelationSequence RelationType = "sequence"
	RelationGroup    RelationType = "group"
)

// TimeType is the granularity of a query time slot. TimeString values are
// canonical per type: HOUR "2006-01-02 15", SHIFT "2006-01-02 早班",
// DAY "2006-01-02", WEEK "2006 W02", MONTH "2006-01", QUARTER "2006 Q1",
// TENDAYS "2006-01 上旬", YEAR "2006". A range joins two singles with "~".
type TimeType string

const (
	TimeHour    TimeType = "HOUR"
	TimeShift   TimeType = "SHIFT"
	TimeDay     TimeType = "DAY"
	TimeWeek    TimeType = "WEEK"
	TimeMonth   TimeType = "MONTH"
	TimeQuarter TimeType = "QUARTER"
	TimeTendays TimeType = "TENDAYS"
	TimeYear    TimeType = "YEAR"
)

var validTimeTypes = map[TimeType]bool{
	TimeHour: true, TimeShift: true, TimeDay: true, TimeWeek: true,
	TimeMonth: true, TimeQuarter: true, TimeTendays: true, TimeYear: true,
}

// IsValidTimeType returns true if the given granularity is known.
func IsValidTimeType(t TimeType) bool {
	return validTimeTypes[t]
}
