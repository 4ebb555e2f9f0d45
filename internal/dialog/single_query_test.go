package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/metrics"
	"github.com/abramin/wattson/internal/slots"
)

func TestSingleQuery_AsksTimeWhenMissing(t *testing.T) {
	f := newFixture(t, parsedTurn(
		intents(domain.IntentSingleQuery),
		mention("高炉工序能耗实绩", "", ""),
	))

	reply := f.turn(t, "查一下高炉工序能耗实绩")

	assert.False(t, reply.Done)
	assert.Equal(t, KindMissingSlot, reply.Kind)
	assert.Equal(t, "好的，要查【高炉工序能耗实绩报出值】，请告诉我时间。", reply.Text)

	snap := f.g.Snapshot()
	require.NotNil(t, snap, "the waiting entry survives the commit")
	require.Len(t, snap.ActiveEntries(), 1)
	assert.Equal(t, slots.StateAwaitingTime, slots.StateOf(snap.ActiveEntries()[0]))
}

func TestSingleQuery_AmbiguousFragmentOffersNumberedCandidates(t *testing.T) {
	f := newFixture(t, parsedTurn(
		intents(domain.IntentSingleQuery),
		mention("工序能耗", "2022-03", domain.TimeMonth),
	))

	reply := f.turn(t, "2022年3月工序能耗")

	assert.False(t, reply.Done)
	assert.Equal(t, KindAmbiguousIndicator, reply.Kind)
	assert.Contains(t, reply.Text, "没有完全匹配的【工序能耗】")
	assert.Contains(t, reply.Text, "1) 高炉工序能耗")
	assert.Contains(t, reply.Text, "匹配度")

	snap := f.g.Snapshot()
	require.NotNil(t, snap)
	entries := snap.ActiveEntries()
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Candidates, 5)
	assert.Equal(t, slots.StateAwaitingFormula, slots.StateOf(entries[0]))
}

func TestSingleQuery_ReusesValueFromEarlierNode(t *testing.T) {
	f := newFixture(t,
		parsedTurn(intents(domain.IntentSingleQuery), mention("吨钢耗电", "2022-03", domain.TimeMonth)),
		parsedTurn(intents(domain.IntentSingleQuery), mention("吨钢耗电", "2022-03", domain.TimeMonth)),
	)
	f.src.values["F5|2022-03"] = "482.0000"

	first := f.turn(t, "2022年3月吨钢耗电")
	assert.True(t, first.Done)

	second := f.turn(t, "再说一遍2022年3月吨钢耗电")
	assert.True(t, second.Done)
	assert.Equal(t, first.Text, second.Text)

	assert.Len(t, f.src.calls, 1, "the second answer comes from the graph, not the platform")
	assert.Equal(t, 2, f.g.NodeCount(), "reuse still commits its own node")
}

func TestSingleQuery_TimeOnlyTurnRecoversLastIndicator(t *testing.T) {
	f := newFixture(t,
		parsedTurn(intents(domain.IntentSingleQuery), mention("吨钢耗电", "2022-03", domain.TimeMonth)),
		parsedTurn(intents(domain.IntentSingleQuery), mention("", "2022-04", domain.TimeMonth)),
	)
	f.src.values["F5|2022-03"] = "482.0000"
	f.src.values["F5|2022-04"] = "491.5000"

	f.turn(t, "2022年3月吨钢耗电")
	reply := f.turn(t, "查查2022年4月的")

	assert.True(t, reply.Done)
	assert.Equal(t, "吨钢耗电 在 2022年4月 的值是 491.5000。", reply.Text)
	assert.Equal(t, []string{"F5|2022-03", "F5|2022-04"}, f.src.calls,
		"recovered entries re-query instead of trusting old values")
}

func TestSingleQuery_UpstreamFailureCommitsFilledSlots(t *testing.T) {
	f := newFixture(t, parsedTurn(
		intents(domain.IntentSingleQuery),
		mention("吨钢耗电", "2022-03", domain.TimeMonth),
	))
	f.src.errs["F5|2022-03"] = metrics.ErrRetryExhausted

	reply := f.turn(t, "2022年3月吨钢耗电")

	assert.False(t, reply.Done)
	assert.Equal(t, KindUpstreamFailure, reply.Kind)
	assert.Equal(t, replyQueryFailed(), reply.Text)

	snap := f.g.Snapshot()
	require.NotNil(t, snap)
	entries := snap.ActiveEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Ready(), "both slots stay filled for a retry")
	assert.Nil(t, entries[0].Value)
	assert.Equal(t, 0, f.g.NodeCount())
	require.Len(t, f.g.History(), 1)
}

func TestSingleQuery_NoMatchAsksForAnotherName(t *testing.T) {
	f := newFixture(t, parsedTurn(
		intents(domain.IntentSingleQuery),
		mention("天气预报", "", ""),
	))

	reply := f.turn(t, "查天气预报")

	assert.False(t, reply.Done)
	assert.Equal(t, KindMissingSlot, reply.Kind)
	assert.Equal(t, replyNoFormula(), reply.Text)
}

func TestSingleQuery_PreferenceShortCircuitsResolution(t *testing.T) {
	f := newFixture(t,
		parsedTurn(intents(domain.IntentSingleQuery), mention("工序能耗", "2022-03", domain.TimeMonth)),
	)
	require.NoError(t, f.prefs.Upsert(context.Background(), &domain.Preference{
		Scope: testScope, Indicator: "工序能耗", FormulaID: "F3", FormulaName: "高炉工序能耗计划报出值",
	}))
	f.src.values["F3|2022-03"] = "437.2723"

	reply := f.turn(t, "2022年3月工序能耗")

	assert.True(t, reply.Done, "a stored preference skips the candidate list entirely")
	assert.Equal(t, "高炉工序能耗计划报出值 在 2022年3月 的值是 437.2723。", reply.Text)
}
