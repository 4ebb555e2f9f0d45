package resolve

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// CombineRule describes a qualifier combination that boosts candidates
// whose display name carries all of its terms, e.g. 实绩+报出值. Terms are
// ordered from the innermost qualifier outward; the leftmost matcher
// appends the missing tail to build full catalog names.
type CombineRule struct {
	Name   string   `yaml:"name"`
	Terms  []string `yaml:"terms"`
	Weight float64  `yaml:"weight"`
}

// RuleSet is a full scoring rule configuration.
type RuleSet struct {
	// DefaultBoost is added to a candidate's score when no rule matched it.
	DefaultBoost float64       `yaml:"default_boost"`
	Rules        []CombineRule `yaml:"rules"`
}

// DefaultRules returns the built-in rule set used when no rules file is
// configured. 实绩 outweighs 计划 so a bare indicator name lands on the
// 实绩报出值 variant; the 累计值 weights are small enough that neither
// variant clears the auto-resolve margin on its own.
func DefaultRules() RuleSet {
	return RuleSet{
		DefaultBoost: 0.05,
		Rules: []CombineRule{
			{Name: "实绩报出值", Terms: []string{"实绩", "报出值"}, Weight: 0.3},
			{Name: "计划报出值", Terms: []string{"计划", "报出值"}, Weight: 0.25},
			{Name: "实绩累计值", Terms: []string{"实绩", "累计值"}, Weight: 0.03},
			{Name: "计划累计值", Terms: []string{"计划", "累计值"}, Weight: 0.02},
		},
	}
}

// RuleSource serves the rule set currently in effect.
type RuleSource interface {
	Current() RuleSet
}

// RuleProvider loads rules from a YAML file and reloads them when the
// file's modification time changes, so rule edits apply without a restart.
type RuleProvider struct {
	mu      sync.Mutex
	path    string
	modTime time.Time
	rules   RuleSet
}

// NewRuleProvider loads the rules file at path. An unreadable or invalid
// file is an error at startup; later reload failures keep the last good
// rule set.
func NewRuleProvider(path string) (*RuleProvider, error) {
	p := &RuleProvider{path: path}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// StaticRules returns a provider that always serves the given rule set.
func StaticRules(rules RuleSet) *RuleProvider {
	return &RuleProvider{rules: rules}
}

func (p *RuleProvider) Current() RuleSet {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.path != "" {
		if st, err := os.Stat(p.path); err == nil && st.ModTime().After(p.modTime) {
			_ = p.reloadLocked()
		}
	}
	return p.rules
}

func (p *RuleProvider) reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloadLocked()
}

func (p *RuleProvider) reloadLocked() error {
	st, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("stating rules file: %w", err)
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("reading rules file: %w", err)
	}
	var rules RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("parsing rules file: %w", err)
	}
	p.rules = rules
	p.modTime = st.ModTime()
	return nil
}
