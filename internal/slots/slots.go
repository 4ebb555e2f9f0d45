// Package slots drives the per-entry slot-filling state machine: deriving
// which slot a follow-up turn should fill, interpreting candidate-list
// choices, and validating time values before they land on an entry.
package slots

import (
	"strconv"
	"strings"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/timeparse"
)

// State is the filling state derived from an entry's slots. It is never
// stored; StateOf recomputes it so it cannot drift from the slot values.
type State string

const (
	// StateAwaitingFormula means the formula slot is missing; the next
	// user turn is interpreted as a candidate choice or a new fragment.
	StateAwaitingFormula State = "awaiting_formula"
	// StateAwaitingTime means the formula is known but the time is not.
	StateAwaitingTime State = "awaiting_time"
	// StateActive means both slots are filled and the metrics value is
	// still pending.
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// StateOf derives the filling state of an entry.
func StateOf(e *domain.IndicatorEntry) State {
	switch {
	case e.Status == domain.EntryCompleted:
		return StateCompleted
	case e.SlotStatus.Formula != domain.SlotFilled:
		return StateAwaitingFormula
	case e.SlotStatus.Time != domain.SlotFilled:
		return StateAwaitingTime
	default:
		return StateActive
	}
}

// ChoiceKind classifies what a user reply to a candidate list meant.
type ChoiceKind string

const (
	// ChoiceSelected: exactly one candidate matched; the entry's formula
	// slot has been filled with it.
	ChoiceSelected ChoiceKind = "selected"
	// ChoiceNarrowed: the reply substring-matched several candidates;
	// the entry is unchanged and the narrowed list should be re-offered.
	ChoiceNarrowed ChoiceKind = "narrowed"
	// ChoiceInvalidOrdinal: the reply was a number outside the offered
	// list. The entry is unchanged.
	ChoiceInvalidOrdinal ChoiceKind = "invalid_ordinal"
	// ChoiceReplaced: the reply matched nothing and became the entry's
	// new indicator fragment; the caller should re-resolve it.
	ChoiceReplaced ChoiceKind = "replaced"
	// ChoiceNoCandidates: the entry has no pending candidate list.
	ChoiceNoCandidates ChoiceKind = "no_candidates"
)

// ChoiceResult reports how a reply was applied to a pending candidate
// list. Chosen is set for ChoiceSelected; Narrowed for ChoiceNarrowed,
// keeping the candidates' original numbers.
type ChoiceResult struct {
	Kind     ChoiceKind
	Chosen   *domain.FormulaCandidate
	Narrowed []domain.FormulaCandidate
}

// ApplyFormulaChoice interprets reply against the entry's pending
// candidate list, in order: bare ordinal, exact name (case-insensitive),
// then substring match. A single hit fills the formula slot directly with
// no re-ranking. A reply matching nothing replaces the indicator fragment
// so the caller can resolve it afresh.
func ApplyFormulaChoice(e *domain.IndicatorEntry, reply string) (ChoiceResult, error) {
	reply = strings.TrimSpace(reply)
	cands := e.Candidates
	if len(cands) == 0 {
		return ChoiceResult{Kind: ChoiceNoCandidates}, nil
	}

	if isDigits(reply) {
		n, _ := strconv.Atoi(reply)
		for i := range cands {
			if cands[i].Number == n {
				chosen := cands[i]
				if err := e.FillFormula(chosen.FormulaID, chosen.FormulaName); err != nil {
					return ChoiceResult{}, err
				}
				return ChoiceResult{Kind: ChoiceSelected, Chosen: &chosen}, nil
			}
		}
		return ChoiceResult{Kind: ChoiceInvalidOrdinal}, nil
	}

	var exact []domain.FormulaCandidate
	for i := range cands {
		if strings.EqualFold(cands[i].FormulaName, reply) {
			exact = append(exact, cands[i])
		}
	}
	if len(exact) == 1 {
		chosen := exact[0]
		if err := e.FillFormula(chosen.FormulaID, chosen.FormulaName); err != nil {
			return ChoiceResult{}, err
		}
		return ChoiceResult{Kind: ChoiceSelected, Chosen: &chosen}, nil
	}

	var fuzzy []domain.FormulaCandidate
	lower := strings.ToLower(reply)
	for i := range cands {
		if strings.Contains(strings.ToLower(cands[i].FormulaName), lower) {
			fuzzy = append(fuzzy, cands[i])
		}
	}
	switch len(fuzzy) {
	case 1:
		chosen := fuzzy[0]
		if err := e.FillFormula(chosen.FormulaID, chosen.FormulaName); err != nil {
			return ChoiceResult{}, err
		}
		return ChoiceResult{Kind: ChoiceSelected, Chosen: &chosen}, nil
	case 0:
		if err := e.ReplaceIndicator(reply); err != nil {
			return ChoiceResult{}, err
		}
		return ChoiceResult{Kind: ChoiceReplaced}, nil
	default:
		return ChoiceResult{Kind: ChoiceNarrowed, Narrowed: fuzzy}, nil
	}
}

// ChooseByNumber fills the formula slot from the candidate with the given
// number, used for reselection where the number arrives pre-parsed.
func ChooseByNumber(e *domain.IndicatorEntry, number int) (*domain.FormulaCandidate, bool) {
	for i := range e.Candidates {
		if e.Candidates[i].Number == number {
			chosen := e.Candidates[i]
			if err := e.FillFormula(chosen.FormulaID, chosen.FormulaName); err != nil {
				return nil, false
			}
			return &chosen, true
		}
	}
	return nil, false
}

// ApplyTime validates the time value and fills the entry's time slot.
func ApplyTime(e *domain.IndicatorEntry, timeString string, tt domain.TimeType) error {
	if err := timeparse.Validate(timeString, tt); err != nil {
		return err
	}
	return e.FillTime(timeString, tt)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
