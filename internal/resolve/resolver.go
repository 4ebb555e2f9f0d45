// Package resolve maps free-text indicator phrases onto catalog formulas.
// Resolution runs in a fixed order: stored preference, exact name match,
// leftmost rule completion, then weighted scoring with a bounded candidate
// list for disambiguation.
package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/abramin/wattson/internal/catalog"
	"github.com/abramin/wattson/internal/domain"
)

// Via records which resolution stage produced a result.
type Via string

const (
	ViaPreference Via = "preference"
	ViaExact      Via = "exact"
	ViaLeftmost   Via = "leftmost"
	ViaScore      Via = "score"
)

// Outcome classifies what Resolve produced.
type Outcome string

const (
	// OutcomeResolved means an unambiguous formula was found.
	OutcomeResolved Outcome = "resolved"
	// OutcomeCandidates means the user must choose from Candidates.
	OutcomeCandidates Outcome = "candidates"
	// OutcomeNone means nothing in the catalog matched.
	OutcomeNone Outcome = "none"
)

// Resolution is the result of resolving one indicator phrase.
type Resolution struct {
	Outcome    Outcome
	Formula    *domain.CatalogEntry
	Via        Via
	Candidates []domain.FormulaCandidate
}

// PreferenceLookup finds a previously confirmed formula choice for an
// indicator phrase. A nil preference with nil error means no preference is
// stored.
type PreferenceLookup interface {
	Lookup(ctx context.Context, indicator string) (*domain.Preference, error)
}

type Config struct {
	// TopN bounds the candidate list offered for disambiguation.
	TopN int
	// AutoResolveMargin is the score lead over the runner-up at which the
	// top candidate is taken without asking.
	AutoResolveMargin float64
}

func DefaultConfig() Config {
	return Config{TopN: 5, AutoResolveMargin: 0.15}
}

// Resolver resolves indicator phrases against an in-memory catalog.
type Resolver struct {
	cat   *catalog.Catalog
	rules RuleSource
	cfg   Config
}

func New(cat *catalog.Catalog, rules RuleSource, cfg Config) *Resolver {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig().TopN
	}
	return &Resolver{cat: cat, rules: rules, cfg: cfg}
}

// Resolve maps one indicator phrase to a formula or a candidate list.
// prefs may be nil when no preference store applies.
func (r *Resolver) Resolve(ctx context.Context, fragment string, prefs PreferenceLookup) (Resolution, error) {
	frag := strings.Trim(strings.TrimSpace(fragment), `"'`)
	if frag == "" {
		return Resolution{Outcome: OutcomeNone}, nil
	}

	if prefs != nil {
		pref, err := prefs.Lookup(ctx, frag)
		if err != nil {
			return Resolution{}, err
		}
		if pref != nil {
			entry := domain.CatalogEntry{ID: pref.FormulaID, Name: pref.FormulaName}
			if e, ok := r.cat.LookupExact(pref.FormulaName); ok {
				entry = e
			}
			return Resolution{Outcome: OutcomeResolved, Formula: &entry, Via: ViaPreference}, nil
		}
	}

	if e, ok := r.cat.Lookup(frag); ok {
		return Resolution{Outcome: OutcomeResolved, Formula: &e, Via: ViaExact}, nil
	}

	rules := r.rules.Current()
	if e, ok := r.leftmostMatch(frag, rules.Rules); ok {
		return Resolution{Outcome: OutcomeResolved, Formula: &e, Via: ViaLeftmost}, nil
	}

	top := r.scoreAll(frag, rules)
	if len(top) == 0 {
		return Resolution{Outcome: OutcomeNone}, nil
	}
	if len(top) == 1 || top[0].score-top[1].score > r.cfg.AutoResolveMargin {
		e := top[0].entry
		return Resolution{Outcome: OutcomeResolved, Formula: &e, Via: ViaScore}, nil
	}

	candidates := make([]domain.FormulaCandidate, len(top))
	for i, s := range top {
		candidates[i] = domain.FormulaCandidate{
			Number:      i + 1,
			FormulaID:   s.entry.ID,
			FormulaName: s.entry.Name,
			Score:       s.score,
		}
	}
	return Resolution{Outcome: OutcomeCandidates, Candidates: candidates}, nil
}

// leftmostMatch completes the fragment with the qualifier tail of each
// rule, highest weight first, and takes the first completion that names a
// catalog formula. A fragment already containing leading terms only gets
// the missing tail appended.
func (r *Resolver) leftmostMatch(fragment string, rules []CombineRule) (domain.CatalogEntry, bool) {
	ordered := make([]CombineRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight > ordered[j].Weight
	})

	for _, rule := range ordered {
		if len(rule.Terms) == 0 {
			continue
		}
		prefixLen := 0
		for _, term := range rule.Terms {
			if !strings.Contains(fragment, term) {
				break
			}
			prefixLen++
		}
		candidate := fragment + strings.Join(rule.Terms[prefixLen:], "")
		if e, ok := r.cat.LookupExact(candidate); ok {
			return e, true
		}
	}
	return domain.CatalogEntry{}, false
}

type scoredEntry struct {
	entry domain.CatalogEntry
	score float64
}

// scoreAll ranks every catalog entry against the fragment and keeps the
// top N. Zero-similarity entries are dropped; ties keep catalog order.
func (r *Resolver) scoreAll(fragment string, rules RuleSet) []scoredEntry {
	var scored []scoredEntry
	for _, e := range r.cat.Entries() {
		base := Similarity(fragment, e.Name)
		if base <= 0 {
			continue
		}
		scored = append(scored, scoredEntry{entry: e, score: round4(base + ruleBoost(rules, e.Name))})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > r.cfg.TopN {
		scored = scored[:r.cfg.TopN]
	}
	return scored
}
