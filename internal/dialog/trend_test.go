package dialog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/metrics"
)

// seedMonthlyValues serves one value per month of 2021, rising 4 per month
// from 400.0000 in January.
func seedMonthlyValues(src *fakeSource, formulaID string) {
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%s|2021-%02d", formulaID, m)
		src.values[key] = fmt.Sprintf("%.4f", 400.0+4.0*float64(m-1))
	}
}

func TestTrend_YearExpandsToMonthlyWalk(t *testing.T) {
	f := newFixture(t, parsedTurn(intents(domain.IntentTrend),
		mention("吨钢耗电", "2021", domain.TimeYear),
	))
	seedMonthlyValues(f.src, "F5")

	reply := f.turn(t, "分析2021年吨钢耗电")

	assert.True(t, reply.Done)
	assert.Contains(t, reply.Text, "【吨钢耗电】2021年1月 ~ 2021年12月 趋势：")
	assert.Contains(t, reply.Text, "\n2021年1月：400.0000")
	assert.Contains(t, reply.Text, "\n2021年12月：444.0000")
	assert.Contains(t, reply.Text, "整体趋势：上升（11.0%）。")

	require.Equal(t, 12, f.g.NodeCount())
	rels := f.g.RelationsOfType(domain.RelationSequence)
	require.Len(t, rels, 11)
	assert.Equal(t, 1, rels[0].SourceID)
	assert.Equal(t, 2, rels[0].TargetID)
	assert.Equal(t, 11, rels[10].SourceID)
	assert.Equal(t, 12, rels[10].TargetID)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, rels[0].Meta.MemberIDs)
	assert.Equal(t, "trend", rels[0].Meta.Via)
	assert.Empty(t, f.g.MainIntent())
}

func TestTrend_MonthPointExpandsToDailyWalk(t *testing.T) {
	f := newFixture(t, parsedTurn(intents(domain.IntentTrend),
		mention("吨钢耗电", "2022-02", domain.TimeMonth),
	))
	for d := 1; d <= 28; d++ {
		f.src.values[fmt.Sprintf("F5|2022-02-%02d", d)] = "480.0000"
	}

	reply := f.turn(t, "2022年2月吨钢耗电走势")

	assert.True(t, reply.Done)
	assert.Contains(t, reply.Text, "【吨钢耗电】2022年2月1日 ~ 2022年2月28日 趋势：")
	assert.Contains(t, reply.Text, "整体趋势：持平。")
	assert.Equal(t, 28, f.g.NodeCount())
	assert.Len(t, f.g.RelationsOfType(domain.RelationSequence), 27)
}

func TestTrend_AsksTimeThenWalksAfterSlotFill(t *testing.T) {
	f := newFixture(t,
		parsedTurn(intents(domain.IntentTrend), mention("吨钢耗电", "", domain.TimeMonth)),
		parsedTurn(intents(domain.IntentSlotFill), mention("", "2021", domain.TimeYear)),
	)
	seedMonthlyValues(f.src, "F5")

	asked := f.turn(t, "分析一下吨钢耗电")
	require.Equal(t, KindMissingSlot, asked.Kind)
	assert.Equal(t, "好的，要分析【吨钢耗电】，请告诉我时间。", asked.Text)
	require.Equal(t, domain.IntentTrend, f.g.MainIntent())

	reply := f.turn(t, "2021年的")

	assert.True(t, reply.Done)
	assert.Contains(t, reply.Text, "【吨钢耗电】2021年1月 ~ 2021年12月 趋势：")
	assert.Equal(t, 12, f.g.NodeCount())
	assert.Empty(t, f.g.MainIntent())
}

func TestTrend_HourPointCannotWiden(t *testing.T) {
	f := newFixture(t, parsedTurn(intents(domain.IntentTrend),
		mention("吨钢耗电", "2022-03-05 14", domain.TimeHour),
	))

	reply := f.turn(t, "2022年3月5日14点吨钢耗电趋势")

	assert.False(t, reply.Done)
	assert.Equal(t, replyTrendMinGranularity(), reply.Text)
	assert.Equal(t, KindMissingSlot, reply.Kind)
	assert.Zero(t, f.g.NodeCount())
}

func TestTrend_RangeBeyondBucketCapRejected(t *testing.T) {
	f := newFixture(t, parsedTurn(intents(domain.IntentTrend),
		mention("吨钢耗电", "2020-01~2024-12", domain.TimeMonth),
	))

	reply := f.turn(t, "2020年到2024年吨钢耗电趋势")

	assert.False(t, reply.Done)
	assert.Equal(t, replyTrendRangeTooWide(), reply.Text)
	assert.Zero(t, f.g.NodeCount())
	assert.Empty(t, f.src.calls)
}

func TestTrend_RetryReusesCompletedBuckets(t *testing.T) {
	f := newFixture(t,
		parsedTurn(intents(domain.IntentTrend), mention("吨钢耗电", "2021 Q1", domain.TimeQuarter)),
		parsedTurn(intents(domain.IntentTrend)),
	)
	f.src.values["F5|2021-01"] = "400.0000"
	f.src.values["F5|2021-02"] = "410.0000"
	f.src.errs["F5|2021-03"] = metrics.ErrRetryExhausted

	failed := f.turn(t, "分析2021年一季度吨钢耗电")
	require.Equal(t, KindUpstreamFailure, failed.Kind)
	assert.Equal(t, replyQueryFailed(), failed.Text)
	assert.Equal(t, 2, f.g.NodeCount(), "buckets fetched before the failure are committed")
	require.Equal(t, domain.IntentTrend, f.g.MainIntent())

	delete(f.src.errs, "F5|2021-03")
	f.src.values["F5|2021-03"] = "430.0000"

	reply := f.turn(t, "再分析一次")

	assert.True(t, reply.Done)
	assert.Contains(t, reply.Text, "【吨钢耗电】2021年1月 ~ 2021年3月 趋势：")
	assert.Contains(t, reply.Text, "\n2021年3月：430.0000")
	assert.Contains(t, reply.Text, "整体趋势：上升（7.5%）。")

	assert.Equal(t,
		[]string{"F5|2021-01", "F5|2021-02", "F5|2021-03", "F5|2021-03"},
		f.src.calls, "already-walked buckets were served from the graph")

	rels := f.g.RelationsOfType(domain.RelationSequence)
	require.Len(t, rels, 2)
	assert.Equal(t, []int{3, 4, 5}, rels[0].Meta.MemberIDs, "the retry walk chains its own nodes")
	assert.Empty(t, f.g.MainIntent())
}
