package dialog

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/catalog"
	"github.com/abramin/wattson/internal/classify"
	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/metrics"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
	"github.com/abramin/wattson/internal/testutil"
)

const testScope = "u1"

// scriptedClassifier replays prepared turns in order; extra calls fall back
// to a bare clarify.
type scriptedClassifier struct {
	turns []*classify.ParsedTurn
	errs  []error
	calls int
}

func (s *scriptedClassifier) Classify(_ context.Context, _ string, _ *domain.IntentSnapshot, _ []graph.Exchange) (*classify.ParsedTurn, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.turns) && s.turns[i] != nil {
		return s.turns[i], nil
	}
	return &classify.ParsedTurn{Intents: []domain.IntentName{domain.IntentClarify}}, nil
}

// fakeSource serves values by "formulaID|timeString" key and records every
// fetch so reuse can be asserted.
type fakeSource struct {
	values map[string]string
	errs   map[string]error
	calls  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{values: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeSource) Fetch(_ context.Context, formulaID, timeString string, _ domain.TimeType) (metrics.Value, error) {
	key := formulaID + "|" + timeString
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return metrics.Value{}, err
	}
	if v, ok := f.values[key]; ok {
		return metrics.Value{Raw: v}, nil
	}
	return metrics.Value{}, metrics.ErrNoValue
}

func testCatalog() *catalog.Catalog {
	return catalog.New(testutil.StandardCatalog())
}

// fixture wires a Dispatcher over the scripted classifier, the fake source
// and a real preference store, and tracks the graph across turns the way a
// session would.
type fixture struct {
	d     *Dispatcher
	g     *graph.Graph
	cls   *scriptedClassifier
	src   *fakeSource
	prefs repository.PreferenceRepo
}

func newFixture(t *testing.T, turns ...*classify.ParsedTurn) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	prefs := repository.NewSQLitePreferenceRepo(database)
	cls := &scriptedClassifier{turns: turns}
	src := newFakeSource()
	r := resolve.New(testCatalog(), resolve.StaticRules(resolve.DefaultRules()), resolve.DefaultConfig())
	return &fixture{
		d:     New(cls, r, src, prefs, log.New(io.Discard)),
		g:     graph.New(),
		cls:   cls,
		src:   src,
		prefs: prefs,
	}
}

func (f *fixture) turn(t *testing.T, ask string) Reply {
	t.Helper()
	reply, next, err := f.d.Dispatch(context.Background(), testScope, ask, f.g)
	require.NoError(t, err)
	f.g = next
	return reply
}

// parsedTurn builds a classifier result from intents and mentions.
func parsedTurn(intents []domain.IntentName, mentions ...classify.ParsedIndicator) *classify.ParsedTurn {
	return &classify.ParsedTurn{Intents: intents, Indicators: mentions}
}

func intents(names ...domain.IntentName) []domain.IntentName { return names }

func mention(indicator, timeString string, tt domain.TimeType) classify.ParsedIndicator {
	var m classify.ParsedIndicator
	if indicator != "" {
		m.Indicator = &indicator
	}
	if timeString != "" {
		m.TimeString = &timeString
		m.TimeType = &tt
	}
	return m
}
