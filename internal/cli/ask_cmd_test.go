package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/dialog"
)

func TestAskCmd_AnsweredInOneTurn(t *testing.T) {
	app, f := testApp(t, dialog.Reply{
		Text: "吨钢耗电 在 2022年3月 的值是 482.0000。",
		Done: true,
	})

	out, err := executeCmd(t, app, "ask", "查一下2022年3月的吨钢耗电")
	require.NoError(t, err)

	assert.Contains(t, out, "吨钢耗电 在 2022年3月 的值是 482.0000。")
	assert.Equal(t, []string{"查一下2022年3月的吨钢耗电"}, f.asks)
}

func TestAskCmd_FollowUpFromStdinUntilDone(t *testing.T) {
	app, f := testApp(t,
		dialog.Reply{Text: "好的，要查【吨钢耗电】，请告诉我时间。", Kind: dialog.KindMissingSlot},
		dialog.Reply{Text: "吨钢耗电 在 2022年3月 的值是 482.0000。", Done: true},
	)

	out, err := executeCmdWithInput(t, app, "2022年3月\n", "ask", "查一下吨钢耗电")
	require.NoError(t, err)

	assert.Contains(t, out, "好的，要查【吨钢耗电】，请告诉我时间。")
	assert.Contains(t, out, "● 待补充")
	assert.Contains(t, out, "吨钢耗电 在 2022年3月 的值是 482.0000。")
	assert.Equal(t, []string{"查一下吨钢耗电", "2022年3月"}, f.asks)
}

func TestAskCmd_QuitWordStopsFollowUps(t *testing.T) {
	app, f := testApp(t,
		dialog.Reply{Text: "好的，要查【吨钢耗电】，请告诉我时间。", Kind: dialog.KindMissingSlot},
	)

	_, err := executeCmdWithInput(t, app, "/quit\n", "ask", "查一下吨钢耗电")
	require.NoError(t, err)
	assert.Equal(t, 1, f.askCount())
}

func TestAskCmd_EOFStopsFollowUps(t *testing.T) {
	app, f := testApp(t,
		dialog.Reply{Text: "请告诉我您要查询的指标名称。", Kind: dialog.KindMissingSlot},
	)

	_, err := executeCmd(t, app, "ask", "你好")
	require.NoError(t, err)
	assert.Equal(t, 1, f.askCount())
}

func TestAskCmd_BlankFollowUpLinesSkipped(t *testing.T) {
	app, f := testApp(t,
		dialog.Reply{Text: "好的，要查【吨钢耗电】，请告诉我时间。", Kind: dialog.KindMissingSlot},
		dialog.Reply{Text: "吨钢耗电 在 2022年3月 的值是 482.0000。", Done: true},
	)

	_, err := executeCmdWithInput(t, app, "\n  \n2022年3月\n", "ask", "查一下吨钢耗电")
	require.NoError(t, err)
	assert.Equal(t, []string{"查一下吨钢耗电", "2022年3月"}, f.asks)
}

func TestAskCmd_DispatchErrorSurfaces(t *testing.T) {
	app, f := testApp(t)
	f.err = errors.New("graph integrity violated")

	_, err := executeCmd(t, app, "ask", "查一下吨钢耗电")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph integrity violated")
}

func TestAskCmd_LLMDisabled(t *testing.T) {
	app, _ := testApp(t)
	app.Sessions = nil

	_, err := executeCmd(t, app, "ask", "查一下吨钢耗电")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATTSON_LLM_ENABLED=true")
}
