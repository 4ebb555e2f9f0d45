package dialog

import (
	"context"
	"regexp"
	"strconv"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/slots"
)

// reselectRe spots requests to reopen a settled formula choice.
var reselectRe = regexp.MustCompile(`重选|重新|再选|换个|选第`)

var firstIntRe = regexp.MustCompile(`[0-9]+`)

// handleClarify interprets a free-form follow-up: a choice against pending
// candidates, a reopened choice after 重选, or a plain continuation of the
// entry being filled. A confirmed choice is written back as a preference
// for the fragment that raised the ambiguity.
func (d *Dispatcher) handleClarify(ctx context.Context, t *turn) (outcome, error) {
	reselect := t.isReselect()

	e := t.activeEntry()
	if e == nil && reselect {
		e = t.reopenCandidates()
	}
	if e == nil && !t.malformed {
		// A turn the classifier did understand continues the previous
		// thread; a malformed one must not resurrect old queries.
		e = t.recoverEntry()
	}
	if e == nil {
		return outcome{reply: Reply{Text: replyNotUnderstood()}}, nil
	}

	if len(e.Candidates) > 0 {
		if p, err := d.applyChoice(t, e, reselect); p != nil || err != nil {
			return pauseOrErr(p, err)
		}
	} else if m, ok := t.firstMention(); ok {
		if p, err := t.mergeMention(e, m); p != nil || err != nil {
			return pauseOrErr(p, err)
		}
	}

	// A pinned main intent owns completion; this turn only settled the
	// choice or refined the fragment.
	if main := t.g.MainIntent(); main != "" && isMainIntent(main) {
		return outcome{next: main}, nil
	}

	if _, p, err := d.completeEntry(ctx, t, e); p != nil || err != nil {
		return pauseOrErr(p, err)
	}
	return d.finishTurn(t, replyValue(e))
}

// isReselect reports whether the turn asks to redo a formula choice:
// either by keyword or by clarifying twice in a row.
func (t *turn) isReselect() bool {
	if reselectRe.MatchString(t.ask) {
		return true
	}
	n := len(t.snap.Intents)
	return n >= 2 &&
		t.snap.Intents[n-1] == domain.IntentClarify &&
		t.snap.Intents[n-2] == domain.IntentClarify
}

// reopenCandidates rebuilds an active entry from the most recent candidate
// offer. The current snapshot is checked first, then committed node
// snapshots, newest first, so a choice can be redone even after the query
// completed and the working state was cleared.
func (t *turn) reopenCandidates() *domain.IndicatorEntry {
	fragment, cands := t.snap.LastFragment, t.snap.LastCandidates
	if len(cands) == 0 {
		nodes := t.g.Nodes()
		for i := len(nodes) - 1; i >= 0; i-- {
			s := nodes[i].Snapshot
			if s != nil && len(s.LastCandidates) > 0 {
				fragment, cands = s.LastFragment, s.LastCandidates
				break
			}
		}
	}
	if len(cands) == 0 {
		return nil
	}
	e := domain.NewIndicatorEntry(fragment)
	if err := e.SetCandidates(cands); err != nil {
		return nil
	}
	t.snap.RememberCandidates(fragment, cands)
	t.appendEntry(e)
	return e
}

// applyChoice matches the raw reply against the entry's pending candidate
// list. A reselect reply picks by the first number it contains ("重选第2个")
// before the usual ordinal/name/substring interpretation.
func (d *Dispatcher) applyChoice(t *turn, e *domain.IndicatorEntry, reselect bool) (*pause, error) {
	prefKey := e.Indicator

	if reselect {
		if raw := firstIntRe.FindString(t.ask); raw != "" {
			number, err := strconv.Atoi(raw)
			if err != nil {
				return nil, err
			}
			chosen, ok := slots.ChooseByNumber(e, number)
			if !ok {
				return &pause{kind: KindAmbiguousIndicator, text: replyInvalidOrdinal(len(e.Candidates))}, nil
			}
			t.prefs.stage(prefKey, chosen.FormulaID, chosen.FormulaName)
			return nil, nil
		}
	}

	res, err := slots.ApplyFormulaChoice(e, t.ask)
	if err != nil {
		return nil, err
	}
	switch res.Kind {
	case slots.ChoiceSelected:
		t.prefs.stage(prefKey, res.Chosen.FormulaID, res.Chosen.FormulaName)
		return nil, nil
	case slots.ChoiceNarrowed:
		return &pause{kind: KindAmbiguousIndicator, text: replyNarrowed(t.ask, res.Narrowed)}, nil
	case slots.ChoiceInvalidOrdinal:
		return &pause{kind: KindAmbiguousIndicator, text: replyInvalidOrdinal(len(e.Candidates))}, nil
	default:
		// ChoiceReplaced: the reply became the new fragment and the
		// completion pipeline resolves it afresh.
		return nil, nil
	}
}
