package dialog

import (
	"context"

	"github.com/abramin/wattson/internal/domain"
)

// handleSingleQuery answers one indicator at one time point. The entry to
// fill is, in order: the oldest active entry, a new one from the parsed
// mention, or a fresh entry recovered from the last completed node.
func (d *Dispatcher) handleSingleQuery(ctx context.Context, t *turn) (outcome, error) {
	e := t.activeEntry()
	m, hasMention := t.firstMention()

	if e == nil {
		if frag := mentionIndicator(m); hasMention && frag != "" {
			e = domain.NewIndicatorEntry(frag)
			t.appendEntry(e)
		} else {
			e = t.recoverEntry()
		}
	}
	if e == nil {
		if hasMention && m.HasTime() {
			t.cachePendingTime(*m.TimeString, *m.TimeType)
		}
		return outcome{reply: Reply{Text: replyAskIndicator(), Kind: KindMissingSlot}}, nil
	}

	if hasMention {
		if p, err := t.mergeMention(e, m); p != nil || err != nil {
			return pauseOrErr(p, err)
		}
	}

	// Mid-thread turns only contribute their mention; the pinned main
	// intent decides how entries get completed.
	if main := t.g.MainIntent(); main != "" && isMainIntent(main) {
		return outcome{next: main}, nil
	}

	if _, p, err := d.completeEntry(ctx, t, e); p != nil || err != nil {
		return pauseOrErr(p, err)
	}
	return d.finishTurn(t, replyValue(e))
}

func pauseOrErr(p *pause, err error) (outcome, error) {
	if err != nil {
		return outcome{}, err
	}
	return p.outcome(), nil
}
