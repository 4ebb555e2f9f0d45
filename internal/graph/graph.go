// Package graph holds the per-conversation context graph: one node per
// committed indicator query, append-only relations between nodes, the
// ask/reply history, and the in-progress intent snapshot. A graph belongs
// to exactly one conversation and is never shared across sessions.
package graph

import (
	"errors"
	"fmt"

	"github.com/abramin/wattson/internal/domain"
)

// ErrIntegrityViolation reports a relation referencing a node id that was
// never created. This is a programming error, not a user input problem.
var ErrIntegrityViolation = errors.New("relation endpoint not in graph")

// Node is a committed query. Entry and Snapshot are frozen at commit time
// and must not be mutated afterwards.
type Node struct {
	ID       int                    `json:"id"`
	Entry    *domain.IndicatorEntry `json:"indicatorEntry"`
	Snapshot *domain.IntentSnapshot `json:"intentSnapshot,omitempty"`
}

// Exchange is one ask/reply pair of the conversation history.
type Exchange struct {
	Ask   string `json:"ask"`
	Reply string `json:"reply"`
}

// Graph is the conversational memory of one session. It is not safe for
// concurrent use; the session layer serializes turns per conversation.
type Graph struct {
	nodes      []*Node
	byID       map[int]*Node
	relations  []Relation
	nextID     int
	history    []Exchange
	snapshot   *domain.IntentSnapshot
	mainIntent domain.IntentName
}

// New returns an empty graph. Node ids start at 1.
func New() *Graph {
	return &Graph{byID: make(map[int]*Node), nextID: 1}
}

// CreateNode commits an entry with the intent snapshot it was filled
// under, deep-copied so later turns cannot rewrite history. The new
// node's id is returned; ids increase strictly and are never reused.
func (g *Graph) CreateNode(entry *domain.IndicatorEntry, snap *domain.IntentSnapshot) int {
	n := &Node{ID: g.nextID, Entry: entry.Clone()}
	if snap != nil {
		n.Snapshot = snap.Clone()
	}
	g.nextID++
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n.ID
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns all nodes in creation order. The slice is shared; treat
// it as read-only.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NodeCount returns how many nodes have been committed.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// FindNode returns the newest completed node matching indicator and time
// string, used to reuse an already-fetched value instead of querying again.
func (g *Graph) FindNode(indicator, timeString string) (*Node, bool) {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		e := g.nodes[i].Entry
		if e == nil || e.Indicator != indicator || e.Status != domain.EntryCompleted {
			continue
		}
		if e.TimeString != nil && *e.TimeString == timeString && e.Value != nil {
			return g.nodes[i], true
		}
	}
	return nil, false
}

// LastCompletedNode returns the newest node whose entry completed.
func (g *Graph) LastCompletedNode() (*Node, bool) {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if g.nodes[i].Entry != nil && g.nodes[i].Entry.Status == domain.EntryCompleted {
			return g.nodes[i], true
		}
	}
	return nil, false
}

// AddRelation appends a relation between two existing nodes. Both
// endpoints must have been created on this graph.
func (g *Graph) AddRelation(rt domain.RelationType, sourceID, targetID int, meta RelationMeta) error {
	if _, ok := g.byID[sourceID]; !ok {
		return fmt.Errorf("%w: source %d", ErrIntegrityViolation, sourceID)
	}
	if _, ok := g.byID[targetID]; !ok {
		return fmt.Errorf("%w: target %d", ErrIntegrityViolation, targetID)
	}
	g.relations = append(g.relations, Relation{
		Type: rt, SourceID: sourceID, TargetID: targetID, Meta: meta,
	})
	return nil
}

// Relations returns all relations in insertion order. Read-only.
func (g *Graph) Relations() []Relation {
	return g.relations
}

// RelationsOfType returns the relations of one type, in insertion order.
func (g *Graph) RelationsOfType(rt domain.RelationType) []Relation {
	var out []Relation
	for _, r := range g.relations {
		if r.Type == rt {
			out = append(out, r)
		}
	}
	return out
}

// AppendHistory records one ask/reply exchange.
func (g *Graph) AppendHistory(ask, reply string) {
	g.history = append(g.history, Exchange{Ask: ask, Reply: reply})
}

// History returns all exchanges, oldest first. Read-only.
func (g *Graph) History() []Exchange {
	return g.history
}

// RecentHistory returns up to n of the latest exchanges, oldest first.
// n <= 0 means no limit.
func (g *Graph) RecentHistory(n int) []Exchange {
	if n <= 0 || len(g.history) <= n {
		return g.history
	}
	return g.history[len(g.history)-n:]
}

// Snapshot returns the in-progress intent snapshot, which may be nil
// after a completed turn reset it.
func (g *Graph) Snapshot() *domain.IntentSnapshot {
	return g.snapshot
}

// EnsureSnapshot returns the in-progress snapshot, creating it if needed.
func (g *Graph) EnsureSnapshot() *domain.IntentSnapshot {
	if g.snapshot == nil {
		g.snapshot = domain.NewIntentSnapshot()
	}
	return g.snapshot
}

// SetMainIntent pins the multi-turn intent a thread is working towards,
// e.g. compare while its constituent queries are still being filled.
func (g *Graph) SetMainIntent(intent domain.IntentName) {
	g.mainIntent = intent
}

// MainIntent returns the pinned multi-turn intent, or "".
func (g *Graph) MainIntent() domain.IntentName {
	return g.mainIntent
}

// ClearIntent drops the in-progress snapshot and the pinned main intent,
// marking the current logical request as finished.
func (g *Graph) ClearIntent() {
	g.snapshot = nil
	g.mainIntent = ""
}

// ActiveEntries returns entries still awaiting slots, most recent first:
// the in-progress snapshot's actives, then actives frozen into node
// snapshots, newest node first. Duplicate indicator/time pairs are
// reported once.
func (g *Graph) ActiveEntries() []*domain.IndicatorEntry {
	var out []*domain.IndicatorEntry
	seen := make(map[string]bool)
	collect := func(s *domain.IntentSnapshot) {
		if s == nil {
			return
		}
		for _, e := range s.ActiveEntries() {
			key := e.Indicator + "\x00" + domain.StrFromPtrWithDefault(e.TimeString, "")
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	collect(g.snapshot)
	for i := len(g.nodes) - 1; i >= 0; i-- {
		collect(g.nodes[i].Snapshot)
	}
	return out
}

// Clone returns a deep copy for staging a turn: handlers mutate the
// clone and the session swaps it in only when the turn succeeds. The
// clone keeps the id counter so committed and rolled-back staging never
// reuse ids within one session's lifetime.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		byID:       make(map[int]*Node, len(g.byID)),
		nextID:     g.nextID,
		mainIntent: g.mainIntent,
	}
	if g.nodes != nil {
		out.nodes = make([]*Node, len(g.nodes))
		for i, n := range g.nodes {
			cp := &Node{ID: n.ID}
			if n.Entry != nil {
				cp.Entry = n.Entry.Clone()
			}
			if n.Snapshot != nil {
				cp.Snapshot = n.Snapshot.Clone()
			}
			out.nodes[i] = cp
			out.byID[cp.ID] = cp
		}
	}
	if g.relations != nil {
		out.relations = make([]Relation, len(g.relations))
		for i, r := range g.relations {
			out.relations[i] = r.clone()
		}
	}
	out.history = append([]Exchange(nil), g.history...)
	if g.snapshot != nil {
		out.snapshot = g.snapshot.Clone()
	}
	return out
}
