package domain

// PendingTime is a time slot parsed before any indicator could receive it,
// kept so a later indicator mention inherits it.
type PendingTime struct {
	TimeString string   `json:"timeString"`
	TimeType   TimeType `json:"timeType"`
}

// IntentSnapshot is the working state of the conversation: the raw inputs
// and intents seen so far this thread, and the indicator entries being
// filled. UserInputs and Intents are append-only and index-aligned.
//
// LastFragment and LastCandidates remember the most recent candidate list
// offered to the user. They outlive the choice itself (entries clear their
// candidates once the formula fills), so a later "重选" can reopen the
// list from a committed node snapshot.
type IntentSnapshot struct {
	UserInputs  []string          `json:"userInputs"`
	Intents     []IntentName      `json:"intents"`
	Indicators  []*IndicatorEntry `json:"indicators"`
	PendingTime *PendingTime      `json:"pendingTime,omitempty"`

	LastFragment   string             `json:"lastFragment,omitempty"`
	LastCandidates []FormulaCandidate `json:"lastCandidates,omitempty"`
}

// RememberCandidates records a candidate offer for later reopening.
func (s *IntentSnapshot) RememberCandidates(fragment string, candidates []FormulaCandidate) {
	s.LastFragment = fragment
	s.LastCandidates = make([]FormulaCandidate, len(candidates))
	copy(s.LastCandidates, candidates)
}

// NewIntentSnapshot returns an empty snapshot.
func NewIntentSnapshot() *IntentSnapshot {
	return &IntentSnapshot{}
}

// Append records one turn's raw input and classified intent.
func (s *IntentSnapshot) Append(userInput string, intent IntentName) {
	s.UserInputs = append(s.UserInputs, userInput)
	s.Intents = append(s.Intents, intent)
}

// LastIntent returns the most recent intent, or "" if none recorded.
func (s *IntentSnapshot) LastIntent() IntentName {
	if len(s.Intents) == 0 {
		return ""
	}
	return s.Intents[len(s.Intents)-1]
}

// ActiveEntries returns the entries still being filled, most recent first.
func (s *IntentSnapshot) ActiveEntries() []*IndicatorEntry {
	var out []*IndicatorEntry
	for i := len(s.Indicators) - 1; i >= 0; i-- {
		if s.Indicators[i].Status == EntryActive {
			out = append(out, s.Indicators[i])
		}
	}
	return out
}

// CompletedEntries returns the completed entries in insertion order.
func (s *IntentSnapshot) CompletedEntries() []*IndicatorEntry {
	var out []*IndicatorEntry
	for _, e := range s.Indicators {
		if e.Status == EntryCompleted {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s *IntentSnapshot) Clone() *IntentSnapshot {
	out := &IntentSnapshot{
		UserInputs:   append([]string(nil), s.UserInputs...),
		Intents:      append([]IntentName(nil), s.Intents...),
		LastFragment: s.LastFragment,
	}
	if s.LastCandidates != nil {
		out.LastCandidates = make([]FormulaCandidate, len(s.LastCandidates))
		copy(out.LastCandidates, s.LastCandidates)
	}
	if s.Indicators != nil {
		out.Indicators = make([]*IndicatorEntry, len(s.Indicators))
		for i, e := range s.Indicators {
			out.Indicators[i] = e.Clone()
		}
	}
	if s.PendingTime != nil {
		pt := *s.PendingTime
		out.PendingTime = &pt
	}
	return out
}
