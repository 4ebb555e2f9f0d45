package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/catalog"
	"github.com/abramin/wattson/internal/domain"
)

// prefMap is a PreferenceLookup backed by a plain map.
type prefMap map[string]*domain.Preference

func (m prefMap) Lookup(_ context.Context, indicator string) (*domain.Preference, error) {
	return m[indicator], nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]domain.CatalogEntry{
		{ID: "F1", Name: "高炉工序能耗", Position: 0},
		{ID: "F2", Name: "高炉工序能耗实绩报出值", Position: 1},
		{ID: "F3", Name: "高炉工序能耗计划报出值", Position: 2},
		{ID: "F4", Name: "焦化工序能耗实绩报出值", Position: 3},
		{ID: "F5", Name: "吨钢耗电", Position: 4},
		{ID: "F6", Name: "转炉工序能耗实绩报出值", Position: 5},
		{ID: "F7", Name: "转炉工序能耗计划报出值", Position: 6},
		{ID: "F8", Name: "1#高炉工序能耗", Position: 7},
	})
}

func testResolver() *Resolver {
	return New(testCatalog(), StaticRules(DefaultRules()), DefaultConfig())
}

func TestResolve_ExactRawNameBeatsLeftmost(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "高炉工序能耗", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaExact, res.Via)
	assert.Equal(t, "F1", res.Formula.ID, "the bare name itself is in the catalog, so no qualifier completion")
}

func TestResolve_TrimsSurroundingQuotes(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), `"高炉工序能耗"`, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, "F1", res.Formula.ID)
}

func TestResolve_ExactNormalizedName(t *testing.T) {
	// Full-width ＃ normalizes to a space, matching 1#高炉工序能耗.
	res, err := testResolver().Resolve(context.Background(), "1＃高炉工序能耗", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaExact, res.Via)
	assert.Equal(t, "F8", res.Formula.ID)
}

func TestResolve_LeftmostCompletesMissingQualifiers(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "焦化工序能耗", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaLeftmost, res.Via)
	assert.Equal(t, "F4", res.Formula.ID)
	assert.Equal(t, "焦化工序能耗实绩报出值", res.Formula.Name)
}

func TestResolve_LeftmostPrefersHighestWeightRule(t *testing.T) {
	// Both the 实绩 and 计划 completions exist for 转炉; the heavier rule wins.
	res, err := testResolver().Resolve(context.Background(), "转炉工序能耗", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, "F6", res.Formula.ID)
}

func TestResolve_LeftmostAppendsOnlyMissingTail(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "焦化工序能耗实绩", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaLeftmost, res.Via)
	assert.Equal(t, "F4", res.Formula.ID, "实绩 is already present, only 报出值 gets appended")
}

func TestResolve_PreferenceWinsOverExact(t *testing.T) {
	prefs := prefMap{"高炉工序能耗": {
		Indicator: "高炉工序能耗", FormulaID: "F3", FormulaName: "高炉工序能耗计划报出值",
	}}
	res, err := testResolver().Resolve(context.Background(), "高炉工序能耗", prefs)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaPreference, res.Via)
	assert.Equal(t, "F3", res.Formula.ID)
	assert.Equal(t, "高炉工序能耗计划报出值", res.Formula.Name)
}

func TestResolve_ScoringProducesOrderedCandidates(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "工序能耗", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCandidates, res.Outcome)
	require.Len(t, res.Candidates, 5)

	assert.Equal(t, "F1", res.Candidates[0].FormulaID, "shortest name has the highest bigram overlap")
	assert.InDelta(t, 0.8, res.Candidates[0].Score, 1e-9)

	for i, c := range res.Candidates {
		assert.Equal(t, i+1, c.Number)
		if i > 0 {
			assert.LessOrEqual(t, c.Score, res.Candidates[i-1].Score, "scores must be descending")
		}
	}
}

func TestResolve_TieBreaksByCatalogOrder(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "工序能耗", nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeCandidates, res.Outcome)

	// F2, F4 and F6 score identically; catalog order decides.
	var tied []string
	for _, c := range res.Candidates {
		if c.FormulaID == "F2" || c.FormulaID == "F4" || c.FormulaID == "F6" {
			tied = append(tied, c.FormulaID)
		}
	}
	assert.Equal(t, []string{"F2", "F4", "F6"}, tied)
}

func TestResolve_RuleWeightOrdersNearTiedCandidates(t *testing.T) {
	cat := catalog.New([]domain.CatalogEntry{
		{ID: "C1", Name: "高炉工序能耗实绩累计值", Position: 0},
		{ID: "C2", Name: "高炉工序能耗计划累计值", Position: 1},
	})
	r := New(cat, StaticRules(DefaultRules()), DefaultConfig())

	res, err := r.Resolve(context.Background(), "高炉工序能耗累计", nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeCandidates, res.Outcome, "0.01 of rule weight is inside the margin, so no auto-resolve")
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "高炉工序能耗实绩累计值", res.Candidates[0].FormulaName)
	assert.Equal(t, "高炉工序能耗计划累计值", res.Candidates[1].FormulaName)
	assert.Equal(t, 0.7359, res.Candidates[0].Score)
	assert.Equal(t, 0.7259, res.Candidates[1].Score)
}

func TestResolve_AutoResolvesOnClearMargin(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "吨钢耗电量", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, ViaScore, res.Via)
	assert.Equal(t, "F5", res.Formula.ID)
}

func TestResolve_EmptyFragment(t *testing.T) {
	for _, input := range []string{"", "   ", `""`} {
		res, err := testResolver().Resolve(context.Background(), input, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNone, res.Outcome, "input=%q", input)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	res, err := testResolver().Resolve(context.Background(), "天气预报", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, res.Outcome)
	assert.Empty(t, res.Candidates)
}

func TestResolve_TopNCapsCandidates(t *testing.T) {
	r := New(testCatalog(), StaticRules(DefaultRules()), Config{TopN: 2, AutoResolveMargin: 0.15})
	res, err := r.Resolve(context.Background(), "工序能耗", nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeCandidates, res.Outcome)
	assert.Len(t, res.Candidates, 2)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("高炉工序能耗", "高炉工序能耗"))
	assert.Equal(t, 1.0, Similarity(" 高炉工序能耗 ", "高炉工序能耗"), "normalization applies first")
	assert.Equal(t, 0.0, Similarity("", "高炉工序能耗"))
	assert.Equal(t, 0.0, Similarity("吨钢耗电", "天气"))
	assert.InDelta(t, Similarity("工序能耗", "高炉工序能耗"), Similarity("高炉工序能耗", "工序能耗"), 1e-12, "symmetric")
	assert.InDelta(t, 0.75, Similarity("工序能耗", "高炉工序能耗"), 1e-9)
}

func TestRuleBoost(t *testing.T) {
	rules := DefaultRules()
	assert.InDelta(t, 0.3, ruleBoost(rules, "高炉工序能耗实绩报出值"), 1e-9)
	assert.InDelta(t, 0.25, ruleBoost(rules, "高炉工序能耗计划报出值"), 1e-9)
	assert.InDelta(t, rules.DefaultBoost, ruleBoost(rules, "高炉工序能耗"), 1e-9, "unmatched names get the default boost")
}
