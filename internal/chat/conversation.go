package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/fogfish/opts"
	"github.com/google/uuid"
	"github.com/utmux/ag/internal/config"
	"github.com/utmux/ag/internal/prompt"
	"github.com/utmux/ag/internal/session"
	"github.com/utmux/ag/messages"
	"github.com/utmux/ag/pkg/slogx"
	"github.com/utmux/ag/provider"
	"github.com/utmux/ag/provider/openai"
)

// ErrTurnAborted wraps every failure that happens after the request was dispatched.
var ErrTurnAborted = errors.New("turn aborted")

// Renderer is the output surface of a conversation.
type Renderer interface {
	Banner()
	Fragment(string)
	EndStream()
	Info(format string, args ...any)
	Notice(format string, args ...any)
	Error(error)
	Markdown(string) error
}

// ContextFunc derives the context a single turn runs under.
type ContextFunc func(context.Context) (context.Context, context.CancelFunc)

// InterruptContext cancels the turn when the process receives an interrupt.
func InterruptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// Conversation ties a configuration and a session to a completion provider.
type Conversation struct {
	config    *config.RootConfig
	session   *session.Session
	renderer  Renderer
	assembler *prompt.Assembler
	providers provider.Factory
	turnCtx   ContextFunc
	model     string
	markdown  bool
}

var (
	// Model forces a model instead of the configured default.
	Model = opts.ForName[Conversation, string]("model")
	// Markdown re-renders the finished answer as markdown.
	Markdown = opts.ForName[Conversation, bool]("markdown")
)

// WithProviders replaces the factory used to obtain a provider for an endpoint.
func WithProviders(factory provider.Factory) opts.Option[Conversation] {
	return opts.Type[Conversation](func(c *Conversation) error {
		if factory == nil {
			return errors.New("provider factory is required")
		}
		c.providers = factory
		return nil
	})
}

// WithAssembler replaces the prompt assembler.
func WithAssembler(a *prompt.Assembler) opts.Option[Conversation] {
	return opts.Type[Conversation](func(c *Conversation) error {
		c.assembler = a
		return nil
	})
}

// WithTurnContext sets how the context of a single turn is derived.
func WithTurnContext(fn ContextFunc) opts.Option[Conversation] {
	return opts.Type[Conversation](func(c *Conversation) error {
		c.turnCtx = fn
		return nil
	})
}

// New creates a conversation over an already loaded configuration and session.
func New(cfg *config.RootConfig, sess *session.Session, renderer Renderer, options ...opts.Option[Conversation]) (*Conversation, error) {
	c := &Conversation{
		config:    cfg,
		session:   sess,
		renderer:  renderer,
		assembler: prompt.New(),
		providers: openai.Factory,
		turnCtx:   InterruptContext,
	}
	if err := opts.Apply(c, options); err != nil {
		return nil, err
	}
	return c, nil
}

// Session returns the session the conversation appends to.
func (c *Conversation) Session() *session.Session {
	return c.session
}

// Resolve picks the model for the next turn and the provider serving it.
//
// An explicit model must be listed by a provider. Without one the configured
// default model is used, and when that is empty the first model of the current
// provider.
func (c *Conversation) Resolve() (config.ProviderConfig, string, error) {
	if c.model != "" {
		p, ok := c.config.ResolveModel(c.model)
		if !ok {
			return config.ProviderConfig{}, "", fmt.Errorf("%w: '%s'", config.ErrUnknownModel, c.model)
		}
		return p, c.model, nil
	}

	if m := c.config.DefaultModel; m != "" {
		p, ok := c.config.ResolveModel(m)
		if !ok {
			return config.ProviderConfig{}, "", fmt.Errorf("%w: default model '%s' is not offered by any provider", config.ErrNoActiveProvider, m)
		}
		return p, m, nil
	}

	p, err := c.config.ResolveCurrentProvider()
	if err != nil {
		return config.ProviderConfig{}, "", err
	}
	m := p.DefaultModel()
	if m == "" {
		return config.ProviderConfig{}, "", fmt.Errorf("%w: provider '%s' has no models", config.ErrNoActiveProvider, p.Name)
	}
	return p, m, nil
}

// Turn sends one user prompt, optionally with piped data, and returns the cleaned answer.
func (c *Conversation) Turn(ctx context.Context, userPrompt, piped string) (string, error) {
	p, model, err := c.Resolve()
	if err != nil {
		return "", err
	}

	log := slog.With(
		slogx.LoggerName("chat"),
		slog.String("turn", uuid.Must(uuid.NewV7()).String()),
		slogx.Session(c.session.ID()),
		slogx.Provider(p.Name),
		slogx.Model(model),
	)
	c.renderer.Info("Using model '%s' from provider '%s'...", model, p.Name)

	if p.SystemPrompt != "" && c.session.Len() == 0 {
		c.session.Append(messages.RoleSystem, p.SystemPrompt)
	}
	c.session.Append(messages.RoleUser, c.assembler.AssembleContent(userPrompt, piped))

	ctx, cancel := c.turnCtx(ctx)
	defer cancel()

	client := c.providers(provider.Endpoint{BaseURL: p.APIBase, APIKey: p.APIKey})
	params := provider.CompletionParams{
		Model:    model,
		Messages: slices.Clone(c.session.Messages()),
		Extra:    p.ExtraPayload,
	}
	log.Debug("dispatching completion", slog.Int("messages", len(params.Messages)))

	c.renderer.Banner()
	var answer strings.Builder
	for fragment, err := range client.ChatCompletion(ctx, params) {
		if err != nil {
			c.renderer.EndStream()
			log.Debug("completion failed", slogx.Error(err))
			return "", fmt.Errorf("%w: %w", ErrTurnAborted, err)
		}
		c.renderer.Fragment(fragment)
		answer.WriteString(fragment)
	}
	c.renderer.EndStream()

	final := StripThink(answer.String())
	c.session.Append(messages.RoleAssistant, final)
	if err := c.session.Persist(); err != nil {
		return final, err
	}
	log.Debug("turn completed", slogx.Path(c.session.Path()))

	if c.markdown && final != "" {
		if err := c.renderer.Markdown(final); err != nil {
			log.Warn("failed to render markdown", slogx.Error(err))
		}
	}
	return final, nil
}

// IsFatal reports whether err prevents any further turn from succeeding.
func IsFatal(err error) bool {
	return errors.Is(err, config.ErrUnknownModel) || errors.Is(err, config.ErrNoActiveProvider)
}
