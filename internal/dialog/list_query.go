package dialog

import (
	"context"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
)

// handleListQuery answers several indicators in one batch and groups their
// nodes. Mentions replace the operand set; entries completed earlier in
// the thread are kept. The list intent stays pinned while slots are still
// being filled.
func (d *Dispatcher) handleListQuery(ctx context.Context, t *turn) (outcome, error) {
	t.g.SetMainIntent(domain.IntentListQuery)

	if mentions := t.mentions(); len(mentions) > 0 {
		kept := t.snap.Indicators[:0:0]
		for _, e := range t.snap.Indicators {
			if e.Status == domain.EntryCompleted {
				kept = append(kept, e)
			}
		}
		t.snap.Indicators = kept
		for _, m := range mentions {
			e := domain.NewIndicatorEntry(mentionIndicator(m))
			t.appendEntry(e)
			if p, err := t.mergeMention(e, m); p != nil || err != nil {
				return pauseOrErr(p, err)
			}
		}
	}

	ops := t.snap.Indicators
	if len(ops) == 0 {
		return outcome{reply: Reply{Text: replyAskIndicator(), Kind: KindMissingSlot}}, nil
	}
	shareListTime(ops, t.snap)

	ids := make([]int, 0, len(ops))
	for _, e := range ops {
		id, p, err := d.completeEntry(ctx, t, e)
		if p != nil || err != nil {
			return pauseOrErr(p, err)
		}
		ids = append(ids, id)
	}

	meta := graph.RelationMeta{
		Via:       "list_query",
		UserInput: append([]string(nil), t.snap.UserInputs...),
		MemberIDs: ids,
	}
	for i := 0; i+1 < len(ids); i++ {
		if err := t.g.AddRelation(domain.RelationGroup, ids[i], ids[i+1], meta); err != nil {
			return outcome{}, err
		}
	}

	text := replyValues(ops)
	t.g.ClearIntent()
	return outcome{reply: Reply{Text: text, Done: true}}, nil
}

// shareListTime spreads one parsed or pending time over every member that
// does not carry its own, so "统计A、B、C，2022年3月" fills all three.
func shareListTime(ops []*domain.IndicatorEntry, snap *domain.IntentSnapshot) {
	var ts string
	var tt domain.TimeType
	for _, e := range ops {
		if e.SlotStatus.Time == domain.SlotFilled {
			ts, tt = *e.TimeString, *e.TimeType
			break
		}
	}
	if ts == "" && snap.PendingTime != nil {
		ts, tt = snap.PendingTime.TimeString, snap.PendingTime.TimeType
	}
	if ts == "" {
		return
	}
	for _, e := range ops {
		if e.Status == domain.EntryActive && e.SlotStatus.Time != domain.SlotFilled {
			_ = e.FillTime(ts, tt)
		}
	}
}
