package formatter

import (
	"strings"

	"github.com/abramin/wattson/internal/dialog"
)

// FormatReply renders one assistant reply. A turn that paused for more
// input gets a status marker under the text so the user can see at a
// glance why the conversation is waiting.
func FormatReply(r dialog.Reply) string {
	text := StyleFg.Render(r.Text)
	if r.Done {
		return text
	}
	return text + "\n" + KindIndicator(r.Kind)
}

// FormatUserLine renders the user's own input as it appears in the
// conversation transcript.
func FormatUserLine(input string) string {
	return Dim("你：") + input
}

// FormatChatWelcome renders the banner shown when the chat shell starts.
func FormatChatWelcome() string {
	var b strings.Builder
	b.WriteString(Header("wattson"))
	b.WriteString("\n")
	b.WriteString(StyleFg.Render("能耗指标问答。直接输入问题，例如：查一下2024年3月的高炉工序能耗。"))
	b.WriteString("\n")
	b.WriteString(Dim("/reset 重新开始 · /quit 退出"))
	return b.String()
}

// FormatSessionReset renders the confirmation after /reset.
func FormatSessionReset() string {
	return Dim("会话已重置，我们重新开始。")
}

// FormatTurnError renders a dispatch failure inside the conversation.
func FormatTurnError(err error) string {
	return StyleRed.Render("出错了：" + err.Error())
}
