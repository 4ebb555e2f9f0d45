package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abramin/wattson/internal/cli/formatter"
	"github.com/abramin/wattson/internal/dialog"
)

func newAskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Ask one indicator question",
		Long: "Ask a natural-language question about an energy indicator. When the\n" +
			"assistant needs more detail (a time, a choice between formulas) it keeps\n" +
			"reading follow-ups from stdin until the question is answered.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Sessions == nil {
				return errLLMDisabled()
			}
			return runAsk(app, cmd.InOrStdin(), cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func errLLMDisabled() error {
	return fmt.Errorf("LLM features are disabled. Catalog and preference commands still work:\n" +
		"  wattson catalog list\n" +
		"  wattson pref list\n\n" +
		"Enable with: WATTSON_LLM_ENABLED=true")
}

// runAsk drives one question to completion: the opening turn, then
// follow-up turns from in until the dispatcher reports the thread done.
func runAsk(app *App, in io.Reader, out io.Writer, question string) error {
	id := app.Sessions.Open("", app.Scope)

	reply, err := askTurn(app, id, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.FormatReply(reply))

	for !reply.Done {
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

		reply, err = askTurn(app, id, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatter.FormatReply(reply))
	}
	return nil
}

// askTurn runs one dispatcher turn, spinning while the classifier and the
// metrics platform are consulted.
func askTurn(app *App, id, input string) (dialog.Reply, error) {
	var stop func()
	if app.interactive() {
		stop = formatter.StartSpinner("思考中…")
	}
	reply, err := app.Sessions.Handle(context.Background(), id, input)
	if stop != nil {
		stop()
	}
	return reply, err
}

func isQuitWord(s string) bool {
	switch strings.ToLower(s) {
	case "/quit", "/exit", "/q", "quit", "exit", "退出":
		return true
	}
	return false
}
