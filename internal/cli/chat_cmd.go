package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abramin/wattson/internal/cli/formatter"
)

func newChatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive Q&A shell",
		Long: "Start a multi-turn conversation. On a terminal this runs the full-screen\n" +
			"shell; with piped input it falls back to a plain line-by-line loop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Sessions == nil {
				return errLLMDisabled()
			}
			if !app.interactive() {
				return runPlainChat(app, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			p := tea.NewProgram(newChatModel(app), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	return cmd
}

// runPlainChat is the non-TTY conversation loop: read a line, answer it,
// repeat until EOF or a quit word.
func runPlainChat(app *App, in io.Reader, out io.Writer) error {
	id := app.Sessions.Open("", app.Scope)

	for {
		fmt.Fprint(out, formatter.Dim("> "))
		line, err := readPromptLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isQuitWord(line) {
			return nil
		}
		if line == "/reset" {
			if err := app.Sessions.Reset(id); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatSessionReset())
			continue
		}

		reply, err := askTurn(app, id, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatter.FormatReply(reply))
	}
}
