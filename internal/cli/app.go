// Package cli builds the ag and agc commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/fogfish/opts"
	"github.com/utmux/ag/internal/config"
	"github.com/utmux/ag/provider"
	"github.com/utmux/ag/provider/openai"
)

// App holds what the commands share: where the configuration lives, where
// input comes from and how providers are created.
type App struct {
	configDir string
	stdin     *os.File
	providers provider.Factory
	now       func() time.Time
}

var (
	// ConfigDir overrides $AG_CONFIG_DIR and ~/.config/ag.
	ConfigDir = opts.ForName[App, string]("configDir")
	// Stdin replaces the standard input.
	Stdin = opts.ForName[App, *os.File]("stdin")
	// Clock replaces the time source used to name new sessions.
	Clock = opts.ForName[App, func() time.Time]("now")
)

// WithProviders replaces the factory used to obtain a provider for an endpoint.
func WithProviders(factory provider.Factory) opts.Option[App] {
	return opts.Type[App](func(a *App) error {
		a.providers = factory
		return nil
	})
}

// New creates an App reading from os.Stdin and talking to OpenAI-compatible endpoints.
func New(options ...opts.Option[App]) (*App, error) {
	app := &App{
		stdin:     os.Stdin,
		providers: openai.Factory,
		now:       time.Now,
	}
	if err := opts.Apply(app, options); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) store() (*config.Store, error) {
	dir := a.configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return config.NewStore(dir), nil
}

func (a *App) loadConfig() (*config.Store, *config.RootConfig, error) {
	store, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// PrintError reports a command failure the way every command does.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint("Error: "+err.Error()))
}
