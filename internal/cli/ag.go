package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/utmux/ag/internal/chat"
	"github.com/utmux/ag/internal/prompt"
	"github.com/utmux/ag/internal/render"
	"github.com/utmux/ag/internal/session"
)

var errNoInput = errors.New("nothing to ask: give a prompt or pipe some input")

type askFlags struct {
	model      string
	newSession bool
	sessionID  string
	markdown   bool
	verbose    bool
}

// AgCommand returns the `ag` command.
func (a *App) AgCommand() *cobra.Command {
	var f askFlags
	cmd := &cobra.Command{
		Use:   "ag [prompt words...]",
		Short: "Ask a question, start an interactive session, or process piped data",
		Long: `Ask a question, start an interactive session, or process piped data.

Words of the form @path are replaced with the content of the file. Flags may
appear anywhere; prompt words starting with a dash go after "--".
Without prompt words and with a terminal on stdin an interactive session starts;
anything piped to stdin is sent as context together with the prompt.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), f.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, f)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "", "model to use instead of the default")
	flags.BoolVar(&f.newSession, "new", false, "start a new session named after the current time")
	flags.StringVarP(&f.sessionID, "session-id", "s", "", "continue a specific session")
	flags.BoolVar(&f.markdown, "markdown", false, "render the final answer as markdown")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log debug information to stderr")
	return cmd
}

func (a *App) sessionID(f askFlags) string {
	switch {
	case f.newSession:
		return session.NewID(a.now())
	case f.sessionID != "":
		return f.sessionID
	default:
		return session.DefaultID
	}
}

func (a *App) runAsk(cmd *cobra.Command, args []string, f askFlags) error {
	id := a.sessionID(f)
	if err := session.ValidateID(id); err != nil {
		return err
	}
	store, cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	console := render.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	sess := session.Open(store.Dir(), id)
	conv, err := chat.New(cfg, sess, console,
		chat.Model(f.model),
		chat.Markdown(f.markdown),
		chat.WithProviders(a.providers),
	)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if text == "" && prompt.IsTerminal(a.stdin) {
		lines := chat.NewTerminalReader(a.stdin, cmd.OutOrStdout())
		defer lines.Close()
		return conv.Interactive(cmd.Context(), lines)
	}

	piped, err := prompt.ReadPiped(a.stdin)
	if err != nil {
		return err
	}
	if text == "" && piped == "" {
		return errNoInput
	}
	_, err = conv.Turn(cmd.Context(), text, piped)
	return err
}
