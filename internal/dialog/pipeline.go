package dialog

import (
	"context"
	"errors"
	"strings"

	"github.com/abramin/wattson/internal/classify"
	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
	"github.com/abramin/wattson/internal/slots"
	"github.com/abramin/wattson/internal/timeparse"
)

// pause stops a turn with a question or a failure notice for the user.
// Progress the entry made so far is kept and committed.
type pause struct {
	kind Kind
	text string
}

func (p *pause) outcome() outcome {
	return outcome{reply: Reply{Text: p.text, Kind: p.kind}}
}

// prefOverlay answers preference lookups from writes staged this turn
// first, then from the store. Staged writes reach the store only when the
// turn commits.
type prefOverlay struct {
	repo   repository.PreferenceRepo
	scope  string
	staged []domain.Preference
}

func (p *prefOverlay) Lookup(ctx context.Context, indicator string) (*domain.Preference, error) {
	for i := len(p.staged) - 1; i >= 0; i-- {
		if p.staged[i].Indicator == indicator {
			return &p.staged[i], nil
		}
	}
	if p.repo == nil {
		return nil, nil
	}
	pref, err := p.repo.Get(ctx, p.scope, indicator)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pref, nil
}

func (p *prefOverlay) stage(indicator, formulaID, formulaName string) {
	p.staged = append(p.staged, domain.Preference{
		Scope:       p.scope,
		Indicator:   indicator,
		FormulaID:   formulaID,
		FormulaName: formulaName,
	})
}

// completeEntry drives one entry through formula resolution, the time slot
// and the platform query, creating its graph node on completion. The
// returned node id is valid only when pause and err are both nil.
func (d *Dispatcher) completeEntry(ctx context.Context, t *turn, e *domain.IndicatorEntry) (int, *pause, error) {
	if e.Status == domain.EntryCompleted {
		if n, ok := t.g.FindNode(e.Indicator, domain.StrFromPtrWithDefault(e.TimeString, "")); ok {
			return n.ID, nil, nil
		}
		return t.g.CreateNode(e, t.snap), nil, nil
	}

	if p, err := d.resolveFormula(ctx, t, e); p != nil || err != nil {
		return 0, p, err
	}

	if e.SlotStatus.Time != domain.SlotFilled {
		pt := t.snap.PendingTime
		if pt == nil {
			return 0, &pause{kind: KindMissingSlot, text: replyAskTime(t.queryVerb(), e.Indicator)}, nil
		}
		if err := slots.ApplyTime(e, pt.TimeString, pt.TimeType); err != nil {
			t.snap.PendingTime = nil
			return 0, &pause{kind: KindMissingSlot, text: replyAskTimeUnclear()}, nil
		}
	}

	// Reuse a value already fetched for the same indicator and time.
	if n, ok := t.g.FindNode(e.Indicator, *e.TimeString); ok {
		if err := e.Complete(*n.Entry.Value); err != nil {
			return 0, nil, err
		}
		return t.g.CreateNode(e, t.snap), nil, nil
	}

	v, err := d.source.Fetch(ctx, *e.Formula, *e.TimeString, *e.TimeType)
	if err != nil {
		d.logger.Warn("platform query failed",
			"formula", *e.Formula, "time", *e.TimeString, "err", err)
		return 0, &pause{kind: KindUpstreamFailure, text: replyQueryFailed()}, nil
	}
	if err := e.Complete(v.Raw); err != nil {
		return 0, nil, err
	}
	return t.g.CreateNode(e, t.snap), nil, nil
}

// resolveFormula fills the formula slot from a preference or the resolver.
// A candidate list pauses the turn with a numbered choice; the offer is
// also remembered on the snapshot so a later 重选 can reopen it.
func (d *Dispatcher) resolveFormula(ctx context.Context, t *turn, e *domain.IndicatorEntry) (*pause, error) {
	if e.SlotStatus.Formula == domain.SlotFilled {
		return nil, nil
	}
	fragment := strings.TrimSpace(e.Indicator)
	if fragment == "" {
		return &pause{kind: KindMissingSlot, text: replyAskIndicator()}, nil
	}

	res, err := d.resolver.Resolve(ctx, fragment, t.prefs)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case resolve.OutcomeResolved:
		if err := e.FillFormula(res.Formula.ID, res.Formula.Name); err != nil {
			return nil, err
		}
		return nil, nil
	case resolve.OutcomeCandidates:
		if err := e.SetCandidates(res.Candidates); err != nil {
			return nil, err
		}
		t.snap.RememberCandidates(fragment, res.Candidates)
		return &pause{kind: KindAmbiguousIndicator, text: replyCandidates(fragment, res.Candidates)}, nil
	default:
		return &pause{kind: KindMissingSlot, text: replyNoFormula()}, nil
	}
}

// queryVerb picks the verb for slot follow-up questions so "对比" threads
// do not ask as if they were plain queries.
func (t *turn) queryVerb() string {
	switch t.g.MainIntent() {
	case domain.IntentCompare:
		return "对比"
	case domain.IntentTrend:
		return "分析"
	default:
		return "查"
	}
}

// activeEntry returns the oldest entry still being filled, or nil.
func (t *turn) activeEntry() *domain.IndicatorEntry {
	for _, e := range t.snap.Indicators {
		if e.Status == domain.EntryActive {
			return e
		}
	}
	return nil
}

func (t *turn) appendEntry(e *domain.IndicatorEntry) {
	t.snap.Indicators = append(t.snap.Indicators, e)
}

// recoverEntry seeds a fresh active entry from the last completed node so
// a bare follow-up ("再查5月的") can rerun the previous indicator. Slots
// reset; the value is always fetched anew.
func (t *turn) recoverEntry() *domain.IndicatorEntry {
	n, ok := t.g.LastCompletedNode()
	if !ok || n.Entry == nil {
		return nil
	}
	e := domain.NewIndicatorEntry(n.Entry.Indicator)
	t.appendEntry(e)
	return e
}

// firstMention returns the first parsed indicator mention of the turn.
// Continuation hops never re-read mentions.
func (t *turn) firstMention() (classify.ParsedIndicator, bool) {
	if t.continuation || len(t.parsed.Indicators) == 0 {
		return classify.ParsedIndicator{}, false
	}
	return t.parsed.Indicators[0], true
}

// mentions returns all parsed indicator mentions of the turn.
func (t *turn) mentions() []classify.ParsedIndicator {
	if t.continuation {
		return nil
	}
	return t.parsed.Indicators
}

func mentionIndicator(m classify.ParsedIndicator) string {
	if m.Indicator == nil {
		return ""
	}
	return strings.TrimSpace(*m.Indicator)
}

// mergeMention applies a parsed mention onto the entry being filled: a new
// indicator fragment restarts resolution, a parsed time overwrites the time
// slot. An unparsable time pauses with a follow-up instead of failing.
func (t *turn) mergeMention(e *domain.IndicatorEntry, m classify.ParsedIndicator) (*pause, error) {
	if frag := mentionIndicator(m); frag != "" && frag != e.Indicator {
		if err := e.ReplaceIndicator(frag); err != nil {
			return nil, err
		}
	}
	if m.HasTime() {
		if err := slots.ApplyTime(e, *m.TimeString, *m.TimeType); err != nil {
			return &pause{kind: KindMissingSlot, text: replyAskTimeUnclear()}, nil
		}
	}
	return nil, nil
}

// parsedTime extracts the first valid time carried by this turn's mentions.
func (t *turn) parsedTime() (string, domain.TimeType, bool) {
	for _, m := range t.mentions() {
		if !m.HasTime() {
			continue
		}
		if err := timeparse.Validate(*m.TimeString, *m.TimeType); err != nil {
			continue
		}
		return *m.TimeString, *m.TimeType, true
	}
	return "", "", false
}

// cachePendingTime keeps a time that arrived before any indicator, so the
// next mention inherits it.
func (t *turn) cachePendingTime(ts string, tt domain.TimeType) {
	t.snap.PendingTime = &domain.PendingTime{TimeString: ts, TimeType: tt}
}
