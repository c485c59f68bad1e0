/*
Package openai implements provider.Provider on top of the openai-go client. It
serves every endpoint that speaks the OpenAI chat-completions protocol.

# Clients

For returns the provider for an endpoint. Clients are cached per base URL and API
key for the life of the process, so the turns of an interactive session reuse
one connection pool:

	p := openai.For(provider.Endpoint{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "sk-...",
	})

Automatic retries of the underlying client are disabled. A failed request is
reported once and the turn is abandoned.

# Requests

Every request is streamed. The body starts as

	{"model": "<model>", "messages": [...], "stream": true}

and the provider's extra payload is applied on top of it key by key, so a
provider can force fields such as temperature or max_tokens, and can override
the built-in ones.
*/
package openai
