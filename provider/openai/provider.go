package openai

import (
	"context"
	"iter"
	"sort"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/utmux/ag/messages"
	"github.com/utmux/ag/provider"
)

var _ provider.Provider = (*Provider)(nil)

type Provider struct {
	client *openai.Client
}

// New creates a provider. Retries are disabled unless options enable them again.
func New(options ...option.RequestOption) *Provider {
	opts := append([]option.RequestOption{option.WithMaxRetries(0)}, options...)
	return &Provider{
		client: openai.NewClient(opts...),
	}
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, []option.RequestOption) {
	req := openai.ChatCompletionNewParams{
		Messages: openai.F(messagesToOpenAI(params.Messages)),
		Model:    openai.F(params.Model),
	}

	keys := make([]string, 0, len(params.Extra))
	for k := range params.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]option.RequestOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, option.WithJSONSet(k, params.Extra[k]))
	}
	return req, opts
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req, opts := p.buildRequest(&params)

		strm := p.client.Chat.Completions.NewStreaming(ctx, req, opts...)
		defer strm.Close()

		for strm.Next() {
			chunk := strm.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			content := chunk.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			if !yield(content, nil) {
				return
			}
		}

		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}
		if err := strm.Err(); err != nil {
			yield("", err)
		}
	}
}

func messagesToOpenAI(msgs []messages.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case messages.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case messages.RoleUser:
			result = append(result, openai.UserMessage(msg.Content))
		case messages.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		}
	}
	return result
}
