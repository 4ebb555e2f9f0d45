package dialog

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/abramin/wattson/internal/classify"
	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/metrics"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
)

// historyWindow is how many recent exchanges the classifier sees.
const historyWindow = 6

// Reply is the user-visible result of one turn. Done reports that the
// request driving the turn finished (a value was answered, a comparison
// recorded); otherwise the engine is waiting for another input.
type Reply struct {
	Text string
	Done bool
	Kind Kind
}

// Dispatcher routes classified turns to intent handlers and owns the
// transactional boundary: every handler works on a clone of the context
// graph, and only a turn that ran to the end replaces the original.
type Dispatcher struct {
	classifier classify.Classifier
	resolver   *resolve.Resolver
	source     metrics.Source
	prefs      repository.PreferenceRepo
	logger     *log.Logger

	handlers map[domain.IntentName]handlerFunc
}

type handlerFunc func(ctx context.Context, t *turn) (outcome, error)

// outcome is a handler's verdict. A non-empty next re-enters dispatch under
// the pinned main intent instead of replying directly.
type outcome struct {
	reply Reply
	next  domain.IntentName
}

// turn is the per-dispatch working state shared by the handlers. g and
// snap belong to the staged clone; prefs stages preference writes until
// the turn commits.
type turn struct {
	scope  string
	ask    string
	intent domain.IntentName
	parsed *classify.ParsedTurn
	g      *graph.Graph
	snap   *domain.IntentSnapshot
	prefs  *prefOverlay

	// continuation marks re-entry under a recorded main intent; parsed
	// mentions were consumed by the sub-turn and must not be re-read.
	continuation bool
	// malformed marks a turn whose classifier output was unusable.
	malformed bool
}

// New wires a Dispatcher. A nil logger discards logs.
func New(classifier classify.Classifier, resolver *resolve.Resolver, source metrics.Source, prefs repository.PreferenceRepo, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Dispatcher{
		classifier: classifier,
		resolver:   resolver,
		source:     source,
		prefs:      prefs,
		logger:     logger,
	}
	d.handlers = map[domain.IntentName]handlerFunc{
		domain.IntentSingleQuery: d.handleSingleQuery,
		domain.IntentCompare:     d.handleCompare,
		domain.IntentTrend:       d.handleTrend,
		domain.IntentListQuery:   d.handleListQuery,
		domain.IntentSlotFill:    d.handleSlotFill,
		domain.IntentClarify:     d.handleClarify,
	}
	return d
}

// intentPriority orders concurrent intents from one turn; the first one
// present wins the dispatch.
var intentPriority = []domain.IntentName{
	domain.IntentCompare,
	domain.IntentTrend,
	domain.IntentListQuery,
	domain.IntentSingleQuery,
	domain.IntentSlotFill,
	domain.IntentClarify,
}

func pickIntent(intents []domain.IntentName) domain.IntentName {
	for _, want := range intentPriority {
		for _, have := range intents {
			if have == want {
				return want
			}
		}
	}
	return domain.IntentClarify
}

// Dispatch runs one user turn against the graph and returns the reply plus
// the graph to carry forward. On success that is the staged clone with the
// turn applied; on handler failure the original graph comes back untouched
// and the reply asks the user to retry. Only a graph integrity violation
// is returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, scope, ask string, g *graph.Graph) (Reply, *graph.Graph, error) {
	parsed, malformed, err := d.classifyTurn(ctx, ask, g)
	if err != nil {
		// The classifier backend is down; nothing useful can happen
		// this turn and the graph stays as it was.
		d.logger.Error("classifier unavailable", "err", err)
		return Reply{Text: replyUnderstandingDown()}, g, nil
	}

	staged := g.Clone()
	t := &turn{
		scope:     scope,
		ask:       ask,
		parsed:    parsed,
		g:         staged,
		snap:      staged.EnsureSnapshot(),
		prefs:     &prefOverlay{repo: d.prefs, scope: scope},
		malformed: malformed,
	}
	t.intent = pickIntent(parsed.Intents)
	t.snap.Append(ask, t.intent)

	out, err := d.runHandlers(ctx, t)
	if err != nil {
		if errors.Is(err, graph.ErrIntegrityViolation) {
			return Reply{}, g, err
		}
		d.logger.Error("turn failed, rolling back", "intent", t.intent, "err", err)
		return Reply{Text: replyTurnFailed()}, g, nil
	}

	if t.malformed && out.reply.Kind == "" && !out.reply.Done {
		out.reply.Kind = KindMalformedTurn
	}
	staged.AppendHistory(ask, out.reply.Text)
	d.flushPreferences(ctx, t)
	return out.reply, staged, nil
}

// classifyTurn asks the classifier for intents and mentions. Malformed
// output degrades to an empty clarify turn so the raw ask can still be
// matched against pending candidates; transport failures are returned.
func (d *Dispatcher) classifyTurn(ctx context.Context, ask string, g *graph.Graph) (*classify.ParsedTurn, bool, error) {
	parsed, err := d.classifier.Classify(ctx, ask, g.Snapshot(), g.RecentHistory(historyWindow))
	if err == nil {
		return parsed, false, nil
	}
	var perr *classify.ParseError
	if errors.As(err, &perr) {
		d.logger.Warn("classifier output unusable, treating turn as clarify",
			"code", perr.Code, "err", perr.Message)
		return &classify.ParsedTurn{Intents: []domain.IntentName{domain.IntentClarify}}, true, nil
	}
	return nil, false, err
}

// runHandlers executes the picked handler and follows at most a few
// main-intent continuation hops.
func (d *Dispatcher) runHandlers(ctx context.Context, t *turn) (outcome, error) {
	for hops := 0; ; hops++ {
		h, ok := d.handlers[t.intent]
		if !ok {
			h = d.handleClarify
		}
		out, err := h(ctx, t)
		if err != nil {
			return outcome{}, err
		}
		if out.next == "" || hops >= len(intentPriority) {
			return out, nil
		}
		t.intent = out.next
		t.continuation = true
	}
}

// finishTurn closes a sub-turn whose entry completed: with a main intent
// pinned, dispatch re-enters under it; otherwise the thread is done and the
// working snapshot is cleared.
func (d *Dispatcher) finishTurn(t *turn, text string) (outcome, error) {
	if main := t.g.MainIntent(); main != "" && main != t.intent && isMainIntent(main) {
		return outcome{next: main}, nil
	}
	t.g.ClearIntent()
	return outcome{reply: Reply{Text: text, Done: true}}, nil
}

func isMainIntent(intent domain.IntentName) bool {
	switch intent {
	case domain.IntentCompare, domain.IntentTrend, domain.IntentListQuery:
		return true
	}
	return false
}

func (d *Dispatcher) flushPreferences(ctx context.Context, t *turn) {
	if d.prefs == nil {
		return
	}
	for i := range t.prefs.staged {
		p := &t.prefs.staged[i]
		if err := d.prefs.Upsert(ctx, p); err != nil {
			d.logger.Error("saving preference", "indicator", p.Indicator, "err", err)
		}
	}
}
