package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndicatorEntry_StartsWithMissingSlots(t *testing.T) {
	e := NewIndicatorEntry("高炉工序能耗")
	assert.Equal(t, EntryActive, e.Status)
	assert.Equal(t, "高炉工序能耗", e.Indicator)
	assert.Equal(t, SlotMissing, e.SlotStatus.Formula)
	assert.Equal(t, SlotMissing, e.SlotStatus.Time)
	assert.Nil(t, e.Formula)
	assert.Nil(t, e.TimeString)
	assert.False(t, e.Ready())
}

func TestFillFormula_CanonicalizesIndicator(t *testing.T) {
	e := NewIndicatorEntry("工序能耗")
	e.Candidates = []FormulaCandidate{{Number: 1, FormulaID: "F1", FormulaName: "高炉工序能耗", Score: 0.9}}
	require.NoError(t, e.FillFormula("F1", "高炉工序能耗"))
	assert.Equal(t, SlotFilled, e.SlotStatus.Formula)
	require.NotNil(t, e.Formula)
	assert.Equal(t, "F1", *e.Formula)
	assert.Equal(t, "高炉工序能耗", e.Indicator)
	assert.Nil(t, e.Candidates, "choosing a formula clears the candidate list")
}

func TestFillTime_OverwritesPreviousValue(t *testing.T) {
	e := NewIndicatorEntry("吨钢耗电")
	require.NoError(t, e.FillTime("2022-03", TimeMonth))
	require.NoError(t, e.FillTime("2022-04", TimeMonth))
	assert.Equal(t, SlotFilled, e.SlotStatus.Time)
	assert.Equal(t, "2022-04", *e.TimeString)
}

func TestComplete_RequiresBothSlots(t *testing.T) {
	e := NewIndicatorEntry("吨钢耗电")
	err := e.Complete("123.4")
	require.ErrorIs(t, err, ErrSlotsMissing)
	assert.Equal(t, EntryActive, e.Status)

	require.NoError(t, e.FillFormula("F2", "吨钢耗电"))
	err = e.Complete("123.4")
	require.ErrorIs(t, err, ErrSlotsMissing)

	require.NoError(t, e.FillTime("2022-03-01", TimeDay))
	require.NoError(t, e.Complete("123.4"))
	assert.Equal(t, EntryCompleted, e.Status)
	require.NotNil(t, e.Value)
	assert.Equal(t, "123.4", *e.Value)
}

func TestCompletedEntry_IsImmutable(t *testing.T) {
	e := NewIndicatorEntry("吨钢耗电")
	require.NoError(t, e.FillFormula("F2", "吨钢耗电"))
	require.NoError(t, e.FillTime("2022-03-01", TimeDay))
	require.NoError(t, e.Complete("123.4"))

	assert.ErrorIs(t, e.FillFormula("F3", "其他"), ErrEntryCompleted)
	assert.ErrorIs(t, e.FillTime("2022-04-01", TimeDay), ErrEntryCompleted)
	assert.ErrorIs(t, e.SetCandidates(nil), ErrEntryCompleted)
	assert.ErrorIs(t, e.Complete("999"), ErrEntryCompleted)
	assert.Equal(t, "123.4", *e.Value, "value should not change")
}

func TestSetCandidates_KeepsFormulaSlotMissing(t *testing.T) {
	e := NewIndicatorEntry("工序能耗")
	require.NoError(t, e.SetCandidates([]FormulaCandidate{
		{Number: 1, FormulaID: "F1", FormulaName: "高炉工序能耗", Score: 0.81},
		{Number: 2, FormulaID: "F4", FormulaName: "焦化工序能耗", Score: 0.78},
	}))
	assert.Equal(t, SlotMissing, e.SlotStatus.Formula)
	assert.Len(t, e.Candidates, 2)
	assert.False(t, e.Ready())
}

func TestClone_IsDeep(t *testing.T) {
	e := NewIndicatorEntry("工序能耗")
	require.NoError(t, e.SetCandidates([]FormulaCandidate{{Number: 1, FormulaID: "F1", FormulaName: "高炉工序能耗", Score: 0.81}}))
	require.NoError(t, e.FillTime("2022-03", TimeMonth))

	c := e.Clone()
	require.NoError(t, c.FillFormula("F1", "高炉工序能耗"))
	*c.TimeString = "2023-01"
	c.Candidates = nil

	assert.Nil(t, e.Formula, "original must not see the clone's formula")
	assert.Equal(t, "2022-03", *e.TimeString)
	assert.Len(t, e.Candidates, 1)
}
