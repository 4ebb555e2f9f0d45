package dialog

import (
	"context"
	"fmt"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/slots"
)

// handleCompare records a two-sided comparison. Depending on how much the
// turn carried it runs in one step (both operands mentioned), two steps
// (one mention compared against the last completed query) or three steps
// (bare "对比一下" over the last two completed queries). The compare intent
// stays pinned while operands are still being filled, so follow-up turns
// flow back here.
func (d *Dispatcher) handleCompare(ctx context.Context, t *turn) (outcome, error) {
	t.g.SetMainIntent(domain.IntentCompare)

	if p, err := t.seedCompareOperands(); p != nil || err != nil {
		return pauseOrErr(p, err)
	}

	ops := t.snap.Indicators
	if len(ops) > 2 {
		return outcome{reply: Reply{Text: replyCompareTooMany()}}, nil
	}
	inheritOperandTime(ops)

	switch len(ops) {
	case 2:
		ids := make([]int, 0, 2)
		for _, op := range ops {
			id, p, err := d.completeEntry(ctx, t, op)
			if p != nil || err != nil {
				return pauseOrErr(p, err)
			}
			ids = append(ids, id)
		}
		return d.recordCompare(t, ids[0], ids[1])

	case 1:
		op := ops[0]
		base, ok := compareBase(t.g, op)
		if !ok {
			return outcome{reply: Reply{Text: replyCompareNoBase()}}, nil
		}
		if op.SlotStatus.Time != domain.SlotFilled && base.Entry.TimeString != nil {
			if err := slots.ApplyTime(op, *base.Entry.TimeString, *base.Entry.TimeType); err != nil {
				return outcome{}, err
			}
		}
		id, p, err := d.completeEntry(ctx, t, op)
		if p != nil || err != nil {
			return pauseOrErr(p, err)
		}
		return d.recordCompare(t, base.ID, id)

	default:
		a, b, ok := lastTwoCompleted(t.g)
		if !ok {
			t.g.ClearIntent()
			return outcome{reply: Reply{Text: replyCompareNotEnough()}}, nil
		}
		return d.recordCompare(t, a.ID, b.ID)
	}
}

// seedCompareOperands merges this turn's mentions into the comparison
// thread. Two mentions start a fresh operand pair; a single mention either
// refines the operand still being filled or becomes the side compared
// against the last completed query.
func (t *turn) seedCompareOperands() (*pause, error) {
	mentions := t.mentions()
	switch {
	case len(mentions) > 2:
		return &pause{text: replyCompareTooMany()}, nil
	case len(mentions) == 2:
		t.snap.Indicators = nil
		for _, m := range mentions {
			e := domain.NewIndicatorEntry(mentionIndicator(m))
			t.appendEntry(e)
			if p, err := t.mergeMention(e, m); p != nil || err != nil {
				return p, err
			}
		}
	case len(mentions) == 1:
		m := mentions[0]
		if e := t.activeEntry(); e != nil {
			return t.mergeMention(e, m)
		}
		e := domain.NewIndicatorEntry(mentionIndicator(m))
		t.appendEntry(e)
		return t.mergeMention(e, m)
	}
	return nil, nil
}

// inheritOperandTime copies the time slot across operands when exactly one
// side carries it, so "A和B对比，2022年3月" style turns need no follow-up.
func inheritOperandTime(ops []*domain.IndicatorEntry) {
	if len(ops) != 2 {
		return
	}
	a, b := ops[0], ops[1]
	switch {
	case a.SlotStatus.Time == domain.SlotFilled && b.SlotStatus.Time != domain.SlotFilled && b.Status == domain.EntryActive:
		_ = slots.ApplyTime(b, *a.TimeString, *a.TimeType)
	case b.SlotStatus.Time == domain.SlotFilled && a.SlotStatus.Time != domain.SlotFilled && a.Status == domain.EntryActive:
		_ = slots.ApplyTime(a, *b.TimeString, *b.TimeType)
	}
}

// compareBase returns the newest completed node other than the operand's
// own, the reference side of a two-step comparison.
func compareBase(g *graph.Graph, op *domain.IndicatorEntry) (*graph.Node, bool) {
	opID := 0
	if op.Status == domain.EntryCompleted {
		if n, ok := g.FindNode(op.Indicator, domain.StrFromPtrWithDefault(op.TimeString, "")); ok {
			opID = n.ID
		}
	}
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.ID == opID || n.Entry == nil || n.Entry.Status != domain.EntryCompleted {
			continue
		}
		return n, true
	}
	return nil, false
}

// lastTwoCompleted returns the two newest completed nodes, older first.
func lastTwoCompleted(g *graph.Graph) (older, newer *graph.Node, ok bool) {
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Entry == nil || n.Entry.Status != domain.EntryCompleted {
			continue
		}
		if newer == nil {
			newer = n
			continue
		}
		return n, newer, true
	}
	return nil, nil, false
}

// recordCompare links the operand nodes, stores the rendered result on the
// relation and closes the thread.
func (d *Dispatcher) recordCompare(t *turn, leftID, rightID int) (outcome, error) {
	left, ok := t.g.Node(leftID)
	if !ok {
		return outcome{}, fmt.Errorf("%w: compare source %d", graph.ErrIntegrityViolation, leftID)
	}
	right, ok := t.g.Node(rightID)
	if !ok {
		return outcome{}, fmt.Errorf("%w: compare target %d", graph.ErrIntegrityViolation, rightID)
	}

	text := compareText(left.Entry, right.Entry)
	meta := graph.RelationMeta{
		Via:       "compare",
		UserInput: append([]string(nil), t.snap.UserInputs...),
		Result:    text,
	}
	if err := t.g.AddRelation(domain.RelationCompare, leftID, rightID, meta); err != nil {
		return outcome{}, err
	}
	t.g.ClearIntent()
	return outcome{reply: Reply{Text: text, Done: true}}, nil
}
