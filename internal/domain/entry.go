package domain

import "errors"

// ErrEntryCompleted is returned when a mutator is called on an entry that
// has already been completed. Completed entries are immutable.
var ErrEntryCompleted = errors.New("indicator entry already completed")

// ErrSlotsMissing is returned by Complete when one of the two slots has not
// been filled yet.
var ErrSlotsMissing = errors.New("cannot complete entry with missing slots")

// FormulaCandidate is one scored match offered to the user during
// clarification. Number is the 1-based position in the offered list.
type FormulaCandidate struct {
	Number      int     `json:"number"`
	FormulaID   string  `json:"formulaId"`
	FormulaName string  `json:"formulaName"`
	Score       float64 `json:"score"`
}

// SlotStatus tracks which of the two required slots have been filled.
type SlotStatus struct {
	Formula SlotState `json:"formula"`
	Time    SlotState `json:"time"`
}

// IndicatorEntry is one indicator a turn is trying to resolve and query.
// The formula slot is filled when Formula is set; the time slot when
// TimeString and TimeType are set. Candidates is non-empty only while the
// formula slot is missing and the user is being asked to choose.
type IndicatorEntry struct {
	Status    EntryStatus `json:"status"`
	Indicator string      `json:"indicator"`

	// Slot values; nil while the slot is missing.
	Formula    *string   `json:"formula,omitempty"`
	TimeString *string   `json:"timeString,omitempty"`
	TimeType   *TimeType `json:"timeType,omitempty"`

	SlotStatus SlotStatus `json:"slotStatus"`

	// Value holds the queried result once the entry is completed.
	Value *string `json:"value,omitempty"`

	Candidates []FormulaCandidate `json:"candidates,omitempty"`
}

// NewIndicatorEntry returns an active entry for the given indicator text
// with both slots missing.
func NewIndicatorEntry(indicator string) *IndicatorEntry {
	return &IndicatorEntry{
		Status:     EntryActive,
		Indicator:  indicator,
		SlotStatus: SlotStatus{Formula: SlotMissing, Time: SlotMissing},
	}
}

// FillFormula fills the formula slot and canonicalizes the indicator text
// to the matched formula name. Any pending candidates are cleared.
func (e *IndicatorEntry) FillFormula(formulaID, formulaName string) error {
	if e.Status == EntryCompleted {
		return ErrEntryCompleted
	}
	e.Formula = &formulaID
	e.Indicator = formulaName
	e.SlotStatus.Formula = SlotFilled
	e.Candidates = nil
	return nil
}

// SetCandidates records the scored matches the user will choose from.
// The formula slot stays missing until a choice is made.
func (e *IndicatorEntry) SetCandidates(candidates []FormulaCandidate) error {
	if e.Status == EntryCompleted {
		return ErrEntryCompleted
	}
	e.SlotStatus.Formula = SlotMissing
	e.Candidates = candidates
	return nil
}

// FillTime fills the time slot. Filling again overwrites the previous
// value; the slot never transitions back to missing.
func (e *IndicatorEntry) FillTime(timeString string, timeType TimeType) error {
	if e.Status == EntryCompleted {
		return ErrEntryCompleted
	}
	e.TimeString = &timeString
	e.TimeType = &timeType
	e.SlotStatus.Time = SlotFilled
	return nil
}

// ReplaceIndicator discards the indicator text and any pending candidates
// so resolution can start over from a new fragment. The formula slot goes
// back to missing; a filled time slot is kept.
func (e *IndicatorEntry) ReplaceIndicator(indicator string) error {
	if e.Status == EntryCompleted {
		return ErrEntryCompleted
	}
	e.Indicator = indicator
	e.Formula = nil
	e.SlotStatus.Formula = SlotMissing
	e.Candidates = nil
	return nil
}

// Complete records the queried value and marks the entry completed. Both
// slots must be filled first.
func (e *IndicatorEntry) Complete(value string) error {
	if e.Status == EntryCompleted {
		return ErrEntryCompleted
	}
	if e.SlotStatus.Formula != SlotFilled || e.SlotStatus.Time != SlotFilled {
		return ErrSlotsMissing
	}
	e.Value = &value
	e.Status = EntryCompleted
	e.Candidates = nil
	return nil
}

// Ready reports whether both slots are filled and the entry can be queried.
func (e *IndicatorEntry) Ready() bool {
	return e.Status == EntryActive &&
		e.SlotStatus.Formula == SlotFilled && e.SlotStatus.Time == SlotFilled
}

// Clone returns a deep copy of the entry.
func (e *IndicatorEntry) Clone() *IndicatorEntry {
	out := *e
	out.Formula = copyStrPtr(e.Formula)
	out.TimeString = copyStrPtr(e.TimeString)
	out.Value = copyStrPtr(e.Value)
	if e.TimeType != nil {
		tt := *e.TimeType
		out.TimeType = &tt
	}
	if e.Candidates != nil {
		out.Candidates = make([]FormulaCandidate, len(e.Candidates))
		copy(out.Candidates, e.Candidates)
	}
	return &out
}

func copyStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
