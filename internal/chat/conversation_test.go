package chat

import (
	"context"
	"errors"
	"iter"
	"os"
	"strings"
	"testing"

	"github.com/fogfish/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utmux/ag/internal/config"
	"github.com/utmux/ag/internal/render"
	"github.com/utmux/ag/internal/session"
	"github.com/utmux/ag/messages"
	"github.com/utmux/ag/provider"
)

type fakeProvider struct {
	endpoints []provider.Endpoint
	calls     []provider.CompletionParams
	replies   []func() iter.Seq2[string, error]
}

func (f *fakeProvider) factory(endpoint provider.Endpoint) provider.Provider {
	f.endpoints = append(f.endpoints, endpoint)
	return f
}

func (f *fakeProvider) reply(err error, fragments ...string) *fakeProvider {
	f.replies = append(f.replies, func() iter.Seq2[string, error] {
		return provider.Fragments(err, fragments...)
	})
	return f
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, params provider.CompletionParams) iter.Seq2[string, error] {
	f.calls = append(f.calls, params)
	if len(f.replies) == 0 {
		return provider.Fragments(errors.New("no reply configured"))
	}
	next := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return next()
}

func testConfig() *config.RootConfig {
	cfg := &config.RootConfig{DefaultModel: "m1", CurrentProvider: "first"}
	cfg.AddProvider(config.ProviderConfig{
		Name:         "first",
		APIKey:       "key-1",
		APIBase:      "https://one.example.com/v1",
		Models:       []string{"m1", "shared"},
		SystemPrompt: "Be brief.",
		ExtraPayload: map[string]any{"temperature": 0.5, "model": "override"},
	})
	cfg.AddProvider(config.ProviderConfig{
		Name:    "second",
		APIKey:  "key-2",
		APIBase: "https://two.example.com/v1",
		Models:  []string{"m2", "shared"},
	})
	return cfg
}

type harness struct {
	dir    string
	fake   *fakeProvider
	out    *strings.Builder
	errOut *strings.Builder
	conv   *Conversation
}

func newHarness(t *testing.T, cfg *config.RootConfig, options ...opts.Option[Conversation]) *harness {
	t.Helper()
	h := &harness{
		dir:    t.TempDir(),
		fake:   &fakeProvider{},
		out:    &strings.Builder{},
		errOut: &strings.Builder{},
	}
	console := render.New(h.out, h.errOut).WithMarkdownStyle("notty")

	options = append([]opts.Option[Conversation]{WithProviders(h.fake.factory), WithTurnContext(passthrough)}, options...)
	conv, err := New(cfg, session.Open(h.dir, session.DefaultID), console, options...)
	require.NoError(t, err)
	h.conv = conv
	return h
}

func passthrough(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

func roles(msgs []messages.Message) []messages.Role {
	result := make([]messages.Role, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, m.Role)
	}
	return result
}

func TestConversation_Turn(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(nil, "<think>plan</think>", "Hel", "lo  ")

	answer, err := h.conv.Turn(context.Background(), "say hello", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello", answer)

	require.Len(t, h.fake.endpoints, 1)
	assert.Equal(t, provider.Endpoint{BaseURL: "https://one.example.com/v1", APIKey: "key-1"}, h.fake.endpoints[0])

	require.Len(t, h.fake.calls, 1)
	call := h.fake.calls[0]
	assert.Equal(t, "m1", call.Model)
	assert.Equal(t, map[string]any{"temperature": 0.5, "model": "override"}, call.Extra)
	assert.Equal(t, []messages.Message{messages.System("Be brief."), messages.User("say hello")}, call.Messages)

	assert.Contains(t, h.out.String(), "Using model 'm1' from provider 'first'...")
	assert.Contains(t, h.out.String(), "AG:")
	assert.Contains(t, h.out.String(), "<think>plan</think>Hello  \n")

	reopened := session.Open(h.dir, session.DefaultID)
	assert.Equal(t, []messages.Message{
		messages.System("Be brief."),
		messages.User("say hello"),
		messages.Assistant("Hello"),
	}, reopened.Messages())
}

func TestConversation_Turn_SystemPromptOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(nil, "ok")

	for _, q := range []string{"one", "two", "three"} {
		_, err := h.conv.Turn(context.Background(), q, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []messages.Role{
		messages.RoleSystem,
		messages.RoleUser, messages.RoleAssistant,
		messages.RoleUser, messages.RoleAssistant,
		messages.RoleUser, messages.RoleAssistant,
	}, roles(h.conv.Session().Messages()))

	require.Len(t, h.fake.calls, 3)
	assert.Len(t, h.fake.calls[2].Messages, 6)
}

func TestConversation_Turn_NoSystemPromptForExistingSession(t *testing.T) {
	h := newHarness(t, testConfig())
	h.conv.Session().Append(messages.RoleUser, "earlier")
	h.conv.Session().Append(messages.RoleAssistant, "reply")
	h.fake.reply(nil, "ok")

	_, err := h.conv.Turn(context.Background(), "next", "")
	require.NoError(t, err)

	assert.Equal(t, []messages.Role{
		messages.RoleUser, messages.RoleAssistant,
		messages.RoleUser, messages.RoleAssistant,
	}, roles(h.conv.Session().Messages()))
}

func TestConversation_Turn_PipedData(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(nil, "fine")

	_, err := h.conv.Turn(context.Background(), "summarize", "log line")
	require.NoError(t, err)

	msgs := h.fake.calls[0].Messages
	assert.Equal(t, "CONTEXT FROM PIPE:\n---\nlog line\n---\n\nUSER QUESTION:\nsummarize", msgs[len(msgs)-1].Content)
}

func TestConversation_Turn_FailureDoesNotPersist(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(nil, "first answer")
	_, err := h.conv.Turn(context.Background(), "first", "")
	require.NoError(t, err)

	path := h.conv.Session().Path()
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	h.fake.replies = nil
	h.fake.reply(errors.New("connection reset"), "partial")
	_, err = h.conv.Turn(context.Background(), "second", "")
	require.ErrorIs(t, err, ErrTurnAborted)
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, IsFatal(err))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	msgs := h.conv.Session().Messages()
	assert.Equal(t, messages.User("second"), msgs[len(msgs)-1])
}

func TestConversation_Turn_FirstFailureLeavesNoFile(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(errors.New("HTTP 401"))

	_, err := h.conv.Turn(context.Background(), "hi", "")
	require.ErrorIs(t, err, ErrTurnAborted)
	assert.NoFileExists(t, h.conv.Session().Path())
}

func TestConversation_Turn_Canceled(t *testing.T) {
	h := newHarness(t, testConfig())
	h.fake.reply(context.Canceled, "par")

	_, err := h.conv.Turn(context.Background(), "hi", "")
	require.ErrorIs(t, err, ErrTurnAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, h.conv.Session().Path())
}

func TestConversation_Turn_Markdown(t *testing.T) {
	h := newHarness(t, testConfig(), Markdown(true))
	h.fake.reply(nil, "# Heading")

	_, err := h.conv.Turn(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(h.out.String(), "Heading"))
}

func TestConversation_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		configure    func(*config.RootConfig)
		model        string
		wantProvider string
		wantModel    string
		wantErr      error
	}{
		{name: "default model", wantProvider: "first", wantModel: "m1"},
		{name: "explicit model", model: "m2", wantProvider: "second", wantModel: "m2"},
		{name: "shared model picks first provider", model: "shared", wantProvider: "first", wantModel: "shared"},
		{name: "unknown explicit model", model: "nope", wantErr: config.ErrUnknownModel},
		{
			name:      "default model not offered",
			configure: func(c *config.RootConfig) { c.DefaultModel = "gone" },
			wantErr:   config.ErrNoActiveProvider,
		},
		{
			name:         "empty default falls back to current provider",
			configure:    func(c *config.RootConfig) { c.DefaultModel = ""; c.CurrentProvider = "second" },
			wantProvider: "second",
			wantModel:    "m2",
		},
		{
			name:      "empty default and unknown current provider",
			configure: func(c *config.RootConfig) { c.DefaultModel = ""; c.CurrentProvider = "missing" },
			wantErr:   config.ErrNoActiveProvider,
		},
		{
			name: "current provider without models",
			configure: func(c *config.RootConfig) {
				c.DefaultModel = ""
				c.CurrentProvider = "empty"
				c.AddProvider(config.ProviderConfig{Name: "empty", APIBase: "https://empty.example.com"})
			},
			wantErr: config.ErrNoActiveProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.configure != nil {
				tt.configure(cfg)
			}
			conv, err := New(cfg, session.Open(t.TempDir(), session.DefaultID), nil, Model(tt.model))
			require.NoError(t, err)

			p, model, err := conv.Resolve()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsFatal(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, p.Name)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestConversation_Turn_UnknownModelSendsNothing(t *testing.T) {
	h := newHarness(t, testConfig(), Model("nope"))

	_, err := h.conv.Turn(context.Background(), "hi", "")
	require.ErrorIs(t, err, config.ErrUnknownModel)
	assert.Empty(t, h.fake.calls)
	assert.Zero(t, h.conv.Session().Len())
}
