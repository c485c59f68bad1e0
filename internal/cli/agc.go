package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/utmux/ag/internal/config"
	"github.com/utmux/ag/internal/render"
)

// AgcCommand returns the `agc` command that edits the configuration.
func (a *App) AgcCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "agc",
		Short:         "Manage ag's configuration (providers, models, etc.)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug information to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "provider-list",
			Short: "List all configured providers",
			Args:  cobra.NoArgs,
			RunE:  a.runProviderList,
		},
		&cobra.Command{
			Use:   "provider-set NAME",
			Short: "Set the current provider and make its first model the default",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runProviderSet,
		},
		&cobra.Command{
			Use:   "model-set-default MODEL",
			Short: "Set the default model and make its provider current",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runModelSetDefault,
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the configuration file",
			Args:  cobra.NoArgs,
			RunE:  a.runSchema,
		},
	)
	return root
}

func (a *App) runProviderList(cmd *cobra.Command, _ []string) error {
	_, cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	providers := cfg.ProviderList()
	entries := make([]render.ProviderEntry, 0, len(providers))
	for _, p := range providers {
		entries = append(entries, render.ProviderEntry{
			Name:         p.Name,
			Current:      p.Name == cfg.CurrentProvider,
			DefaultModel: cfg.DefaultModel,
			Models:       p.Models,
			SystemPrompt: p.SystemPrompt,
		})
	}
	render.New(cmd.OutOrStdout(), cmd.ErrOrStderr()).Providers(entries)
	return nil
}

func (a *App) runProviderSet(cmd *cobra.Command, args []string) error {
	store, cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	name := args[0]
	if err := cfg.SetCurrentProvider(name); err != nil {
		return err
	}
	if err := store.Patch(map[string]any{
		"current_provider": cfg.CurrentProvider,
		"default_model":    cfg.DefaultModel,
	}); err != nil {
		return err
	}

	console := render.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if p, _ := cfg.Provider(name); p.DefaultModel() != "" {
		console.Info("Default model updated to '%s'.", p.DefaultModel())
	}
	console.Success("Default provider set to '%s'.", name)
	return nil
}

func (a *App) runModelSetDefault(cmd *cobra.Command, args []string) error {
	store, cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	model := args[0]
	if err := cfg.SetDefaultModel(model); err != nil {
		return err
	}
	if err := store.Patch(map[string]any{
		"current_provider": cfg.CurrentProvider,
		"default_model":    cfg.DefaultModel,
	}); err != nil {
		return err
	}

	render.New(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("Success! Default model set to '%s'.", model)
	return nil
}

func (a *App) runSchema(cmd *cobra.Command, _ []string) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
