package dialog

import (
	"context"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/slots"
)

// handleSlotFill applies a time-only turn. The parsed time overwrites the
// time slot of every entry still being filled; with no actives the last
// completed node is recovered so "再查5月的" reruns the previous indicator
// at the new time. A time with no indicator anywhere is cached as pending.
func (d *Dispatcher) handleSlotFill(ctx context.Context, t *turn) (outcome, error) {
	ts, tt, ok := t.parsedTime()
	if !ok {
		return outcome{reply: Reply{Text: replyAskTimeUnclear(), Kind: KindMissingSlot}}, nil
	}
	t.cachePendingTime(ts, tt)

	actives := t.activesInOrder()
	if len(actives) == 0 {
		if e := t.recoverEntry(); e != nil {
			actives = []*domain.IndicatorEntry{e}
		}
	}
	if len(actives) == 0 {
		// Pending time stays cached for the next indicator mention.
		return outcome{reply: Reply{Text: replyAskIndicator(), Kind: KindMissingSlot}}, nil
	}

	for _, e := range actives {
		if err := slots.ApplyTime(e, ts, tt); err != nil {
			return outcome{}, err
		}
	}

	// With a main intent pinned the time was all this turn had to add;
	// completion semantics (operand pairs, bucket walks) belong to the
	// main handler.
	if main := t.g.MainIntent(); main != "" && isMainIntent(main) {
		return outcome{next: main}, nil
	}

	done := make([]*domain.IndicatorEntry, 0, len(actives))
	for _, e := range actives {
		if _, p, err := d.completeEntry(ctx, t, e); p != nil || err != nil {
			return pauseOrErr(p, err)
		}
		done = append(done, e)
	}
	return d.finishTurn(t, replyValues(done))
}

// activesInOrder returns the entries still being filled, oldest first.
func (t *turn) activesInOrder() []*domain.IndicatorEntry {
	var out []*domain.IndicatorEntry
	for _, e := range t.snap.Indicators {
		if e.Status == domain.EntryActive {
			out = append(out, e)
		}
	}
	return out
}
