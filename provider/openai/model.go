package openai

import (
	"github.com/alphadose/haxmap"
	"github.com/openai/openai-go/option"
	"github.com/utmux/ag/provider"
)

var clientRegistry = haxmap.New[string, *Provider]()

// For returns the provider for endpoint, creating its client on first use.
func For(endpoint provider.Endpoint) provider.Provider {
	p, _ := clientRegistry.GetOrCompute(registryKey(endpoint), func() *Provider {
		return New(
			option.WithBaseURL(endpoint.NormalizedBaseURL()),
			option.WithAPIKey(endpoint.APIKey),
		)
	})
	return p
}

// Factory adapts For to provider.Factory.
var Factory provider.Factory = For

func registryKey(endpoint provider.Endpoint) string {
	return endpoint.NormalizedBaseURL() + "\x00" + endpoint.APIKey
}
