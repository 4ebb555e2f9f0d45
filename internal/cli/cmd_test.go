package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/catalog"
	"github.com/abramin/wattson/internal/dialog"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
	"github.com/abramin/wattson/internal/session"
	"github.com/abramin/wattson/internal/testutil"
)

// fakeDialog scripts dispatcher replies in order; extra turns answer with
// a generic done reply. It satisfies session.Dispatcher.
type fakeDialog struct {
	mu      sync.Mutex
	replies []dialog.Reply
	asks    []string
	err     error
}

func (f *fakeDialog) Dispatch(_ context.Context, _, ask string, g *graph.Graph) (dialog.Reply, *graph.Graph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.asks)
	f.asks = append(f.asks, ask)
	if f.err != nil {
		return dialog.Reply{}, nil, f.err
	}

	r := dialog.Reply{Text: "好的。", Done: true}
	if i < len(f.replies) {
		r = f.replies[i]
	}
	next := g.Clone()
	next.AppendHistory(ask, r.Text)
	return r, next, nil
}

func (f *fakeDialog) askCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.asks)
}

// testApp wires a full App over an in-memory DB, a seeded catalog and a
// scripted dispatcher, mirroring the production wiring in cmd/wattson.
func testApp(t *testing.T, replies ...dialog.Reply) (*App, *fakeDialog) {
	t.Helper()
	database := testutil.NewTestDB(t)

	formulas := repository.NewSQLiteFormulaRepo(database)
	require.NoError(t, formulas.ReplaceAll(context.Background(), testutil.StandardCatalog()))

	f := &fakeDialog{replies: replies}
	app := &App{
		Sessions: session.NewManager(f, session.Config{}, nil),
		Formulas: formulas,
		Prefs:    repository.NewSQLitePreferenceRepo(database),
		Resolver: resolve.New(catalog.New(testutil.StandardCatalog()),
			resolve.StaticRules(resolve.DefaultRules()), resolve.DefaultConfig()),
		UoW:    testutil.NewTestUoW(database),
		Logger: log.New(io.Discard),
		Scope:  "u1",
	}
	return app, f
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdWithInput(t, app, "", args...)
}

// executeCmdWithInput additionally feeds input on stdin for follow-up
// prompts and confirmations.
func executeCmdWithInput(t *testing.T, app *App, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
