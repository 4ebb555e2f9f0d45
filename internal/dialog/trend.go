package dialog

import (
	"context"
	"errors"
	"time"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/timeparse"
)

// handleTrend walks one indicator across a time range: the range is split
// into buckets at its own granularity, every bucket is queried (reusing
// already-fetched nodes), and the nodes are chained with sequence
// relations in time order. A point time is first expanded to a range
// ending at it.
func (d *Dispatcher) handleTrend(ctx context.Context, t *turn) (outcome, error) {
	t.g.SetMainIntent(domain.IntentTrend)

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
		return outcome{reply: Reply{Text: replyAskIndicator(), Kind: KindMissingSlot}}, nil
	}
	if hasMention {
		if p, err := t.mergeMention(e, m); p != nil || err != nil {
			return pauseOrErr(p, err)
		}
	}

	if p, err := d.resolveFormula(ctx, t, e); p != nil || err != nil {
		return pauseOrErr(p, err)
	}
	if e.SlotStatus.Time != domain.SlotFilled {
		if pt := t.snap.PendingTime; pt != nil {
			if err := e.FillTime(pt.TimeString, pt.TimeType); err != nil {
				return outcome{}, err
			}
		} else {
			return outcome{reply: Reply{Text: replyAskTime(t.queryVerb(), e.Indicator), Kind: KindMissingSlot}}, nil
		}
	}

	ts, tt := *e.TimeString, *e.TimeType
	if !timeparse.IsRange(ts) {
		rts, rtt, err := timeparse.ExpandToRange(ts, tt, time.Now())
		if err != nil {
			return trendTimeOutcome(err)
		}
		ts, tt = rts, rtt
		if err := e.FillTime(ts, tt); err != nil {
			return outcome{}, err
		}
	}

	buckets, err := timeparse.Buckets(ts, tt)
	if err != nil {
		return trendTimeOutcome(err)
	}

	ids := make([]int, 0, len(buckets))
	points := make([]trendPoint, 0, len(buckets))
	for _, bucket := range buckets {
		be := domain.NewIndicatorEntry(e.Indicator)
		if err := be.FillFormula(*e.Formula, e.Indicator); err != nil {
			return outcome{}, err
		}
		if err := be.FillTime(bucket, tt); err != nil {
			return outcome{}, err
		}
		id, p, err := d.completeEntry(ctx, t, be)
		if p != nil || err != nil {
			// Completed buckets are already nodes; a retry resumes
			// from here via value reuse.
			return pauseOrErr(p, err)
		}
		ids = append(ids, id)
		points = append(points, trendPoint{bucket: bucket, value: domain.StrFromPtrWithDefault(be.Value, "")})
	}

	meta := graph.RelationMeta{
		Via:       "trend",
		UserInput: append([]string(nil), t.snap.UserInputs...),
		MemberIDs: ids,
	}
	for i := 0; i+1 < len(ids); i++ {
		if err := t.g.AddRelation(domain.RelationSequence, ids[i], ids[i+1], meta); err != nil {
			return outcome{}, err
		}
	}

	text := replyTrend(e.Indicator, ts, tt, points)
	t.g.ClearIntent()
	return outcome{reply: Reply{Text: text, Done: true}}, nil
}

// trendTimeOutcome maps range expansion failures to user follow-ups.
func trendTimeOutcome(err error) (outcome, error) {
	switch {
	case errors.Is(err, timeparse.ErrMinGranularity):
		return outcome{reply: Reply{Text: replyTrendMinGranularity(), Kind: KindMissingSlot}}, nil
	case errors.Is(err, timeparse.ErrRangeTooWide):
		return outcome{reply: Reply{Text: replyTrendRangeTooWide(), Kind: KindMissingSlot}}, nil
	case errors.Is(err, timeparse.ErrMalformedTime):
		return outcome{reply: Reply{Text: replyAskTimeUnclear(), Kind: KindMissingSlot}}, nil
	}
	return outcome{}, err
}
