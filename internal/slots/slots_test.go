package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/domain"
)

func candidateList() []domain.FormulaCandidate {
	return []domain.FormulaCandidate{
		{Number: 1, FormulaID: "F2", FormulaName: "高炉工序能耗实绩报出值", Score: 0.7615},
		{Number: 2, FormulaID: "F3", FormulaName: "高炉工序能耗计划报出值", Score: 0.7115},
		{Number: 3, FormulaID: "F5", FormulaName: "吨钢耗电", Score: 0.3500},
	}
}

func entryWithCandidates(t *testing.T) *domain.IndicatorEntry {
	t.Helper()
	e := domain.NewIndicatorEntry("高炉工序能耗")
	require.NoError(t, e.SetCandidates(candidateList()))
	return e
}

func TestStateOf(t *testing.T) {
	e := domain.NewIndicatorEntry("高炉工序能耗")
	assert.Equal(t, StateAwaitingFormula, StateOf(e))

	require.NoError(t, e.FillFormula("F1", "高炉工序能耗"))
	assert.Equal(t, StateAwaitingTime, StateOf(e))

	require.NoError(t, e.FillTime("2022-03", domain.TimeMonth))
	assert.Equal(t, StateActive, StateOf(e))

	require.NoError(t, e.Complete("435.1200"))
	assert.Equal(t, StateCompleted, StateOf(e))
}

func TestStateOf_TimeFirst(t *testing.T) {
	// The classifier may hand over the time before the formula resolves.
	e := domain.NewIndicatorEntry("高炉工序能耗")
	require.NoError(t, e.FillTime("2022-03", domain.TimeMonth))
	assert.Equal(t, StateAwaitingFormula, StateOf(e))
}

func TestApplyFormulaChoice_Ordinal(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "2")
	require.NoError(t, err)

	assert.Equal(t, ChoiceSelected, res.Kind)
	require.NotNil(t, res.Chosen)
	assert.Equal(t, "F3", res.Chosen.FormulaID)
	assert.Equal(t, "F3", *e.Formula)
	assert.Equal(t, "高炉工序能耗计划报出值", e.Indicator)
	assert.Equal(t, domain.SlotFilled, e.SlotStatus.Formula)
	assert.Nil(t, e.Candidates)
}

func TestApplyFormulaChoice_OrdinalOutOfRange(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "7")
	require.NoError(t, err)

	assert.Equal(t, ChoiceInvalidOrdinal, res.Kind)
	assert.Len(t, e.Candidates, 3, "entry keeps its list for the next attempt")
	assert.Equal(t, domain.SlotMissing, e.SlotStatus.Formula)
}

func TestApplyFormulaChoice_ExactName(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "吨钢耗电")
	require.NoError(t, err)

	assert.Equal(t, ChoiceSelected, res.Kind)
	assert.Equal(t, "F5", *e.Formula)
}

func TestApplyFormulaChoice_SubstringSingleMatch(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "计划")
	require.NoError(t, err)

	assert.Equal(t, ChoiceSelected, res.Kind)
	assert.Equal(t, "F3", *e.Formula)
}

func TestApplyFormulaChoice_SubstringNarrows(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "报出值")
	require.NoError(t, err)

	assert.Equal(t, ChoiceNarrowed, res.Kind)
	require.Len(t, res.Narrowed, 2)
	assert.Equal(t, 1, res.Narrowed[0].Number, "narrowed candidates keep their original numbers")
	assert.Equal(t, 2, res.Narrowed[1].Number)
	assert.Nil(t, e.Formula, "entry unchanged until the user picks one")
	assert.Len(t, e.Candidates, 3)
}

func TestApplyFormulaChoice_NoMatchReplacesIndicator(t *testing.T) {
	e := entryWithCandidates(t)
	res, err := ApplyFormulaChoice(e, "焦化工序能耗")
	require.NoError(t, err)

	assert.Equal(t, ChoiceReplaced, res.Kind)
	assert.Equal(t, "焦化工序能耗", e.Indicator)
	assert.Nil(t, e.Candidates)
	assert.Equal(t, domain.SlotMissing, e.SlotStatus.Formula)
}

func TestApplyFormulaChoice_NoCandidates(t *testing.T) {
	e := domain.NewIndicatorEntry("高炉工序能耗")
	res, err := ApplyFormulaChoice(e, "1")
	require.NoError(t, err)
	assert.Equal(t, ChoiceNoCandidates, res.Kind)
}

func TestChooseByNumber(t *testing.T) {
	e := entryWithCandidates(t)
	chosen, ok := ChooseByNumber(e, 1)
	require.True(t, ok)
	assert.Equal(t, "F2", chosen.FormulaID)
	assert.Equal(t, "F2", *e.Formula)

	e2 := entryWithCandidates(t)
	_, ok = ChooseByNumber(e2, 9)
	assert.False(t, ok)
}

func TestApplyTime(t *testing.T) {
	e := domain.NewIndicatorEntry("高炉工序能耗")
	require.NoError(t, ApplyTime(e, "2022-03", domain.TimeMonth))
	assert.Equal(t, "2022-03", *e.TimeString)
	assert.Equal(t, domain.TimeMonth, *e.TimeType)
	assert.Equal(t, domain.SlotFilled, e.SlotStatus.Time)
}

func TestApplyTime_RejectsMalformed(t *testing.T) {
	e := domain.NewIndicatorEntry("高炉工序能耗")
	err := ApplyTime(e, "2022/03", domain.TimeMonth)
	require.Error(t, err)
	assert.Equal(t, domain.SlotMissing, e.SlotStatus.Time)
}

func TestApplyTime_OverwritesEarlierValue(t *testing.T) {
	e := domain.NewIndicatorEntry("高炉工序能耗")
	require.NoError(t, ApplyTime(e, "2022-03", domain.TimeMonth))
	require.NoError(t, ApplyTime(e, "2022-04", domain.TimeMonth))
	assert.Equal(t, "2022-04", *e.TimeString)
}
