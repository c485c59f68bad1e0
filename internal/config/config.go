package config

import (
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrConfigCorrupt is returned when the configuration file exists but cannot be parsed or validated.
	ErrConfigCorrupt = errors.New("configuration file is corrupted")
	// ErrNoActiveProvider is returned when no usable default model or current provider is configured.
	ErrNoActiveProvider = errors.New("no active provider")
	// ErrUnknownModel is returned when a model name is not listed by any provider.
	ErrUnknownModel = errors.New("model not found")
	// ErrUnknownProvider is returned when a provider name is not configured.
	ErrUnknownProvider = errors.New("provider not found")
)

// Providers maps provider names to their configuration, in file order.
type Providers = orderedmap.OrderedMap[string, ProviderConfig]

// NewProviders creates an empty provider map.
func NewProviders() *Providers {
	return orderedmap.New[string, ProviderConfig]()
}

// ProviderConfig describes one OpenAI-compatible API endpoint.
type ProviderConfig struct {
	// Name is the key of the provider in the providers map. It is not serialized.
	Name string `json:"-"`

	APIKey  string   `json:"api_key" jsonschema_description:"API key, sent as a bearer token without the 'Bearer ' prefix"`
	APIBase string   `json:"api_base" jsonschema_description:"Base URL of the OpenAI-compatible API"`
	Models  []string `json:"models" jsonschema_description:"Models served by this provider; the first one is the provider default"`

	SystemPrompt string         `json:"system_prompt,omitempty" jsonschema_description:"System prompt seeded into new sessions"`
	ExtraPayload map[string]any `json:"extra_payload,omitempty" jsonschema_description:"Fields merged verbatim into every request, overriding built-in ones"`
}

// DefaultModel returns the first model of the provider, or "" when it has none.
func (p ProviderConfig) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}

// HasModel reports whether the provider lists the exact model name.
func (p ProviderConfig) HasModel(name string) bool {
	return swag.ContainsStrings(p.Models, name)
}

// RootConfig is the whole configuration document.
type RootConfig struct {
	DefaultModel    string     `json:"default_model" jsonschema_description:"Model used when none is given on the command line"`
	CurrentProvider string     `json:"current_provider" jsonschema_description:"Provider whose first model is used when no default model is set"`
	Providers       *Providers `json:"providers"`
}

// ProviderList returns the providers in file order.
func (c *RootConfig) ProviderList() []ProviderConfig {
	if c.Providers == nil {
		return nil
	}
	result := make([]ProviderConfig, 0, c.Providers.Len())
	for pair := c.Providers.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Value)
	}
	return result
}

// Provider looks up a provider by name.
func (c *RootConfig) Provider(name string) (ProviderConfig, bool) {
	if c.Providers == nil {
		return ProviderConfig{}, false
	}
	return c.Providers.Get(name)
}

// AddProvider adds or replaces a provider. New providers are appended after the existing ones.
func (c *RootConfig) AddProvider(p ProviderConfig) {
	if c.Providers == nil {
		c.Providers = NewProviders()
	}
	c.Providers.Set(p.Name, p)
}

// ResolveModel returns the first provider, in file order, that lists the model.
// A model that no provider lists is reported with ok == false.
func (c *RootConfig) ResolveModel(model string) (ProviderConfig, bool) {
	if c.Providers == nil || model == "" {
		return ProviderConfig{}, false
	}
	for pair := c.Providers.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.HasModel(model) {
			return pair.Value, true
		}
	}
	return ProviderConfig{}, false
}

// ResolveCurrentProvider returns the provider named by current_provider.
func (c *RootConfig) ResolveCurrentProvider() (ProviderConfig, error) {
	if c.CurrentProvider == "" {
		return ProviderConfig{}, fmt.Errorf("%w: current provider is not set", ErrNoActiveProvider)
	}
	p, ok := c.Provider(c.CurrentProvider)
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: current provider '%s' is not defined", ErrNoActiveProvider, c.CurrentProvider)
	}
	return p, nil
}

// SetCurrentProvider makes the named provider current. When the provider lists
// models, its first model becomes the default model as well.
func (c *RootConfig) SetCurrentProvider(name string) error {
	p, ok := c.Provider(name)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownProvider, name)
	}
	c.CurrentProvider = name
	if m := p.DefaultModel(); m != "" {
		c.DefaultModel = m
	}
	return nil
}

// SetDefaultModel makes model the default and its owning provider current.
func (c *RootConfig) SetDefaultModel(model string) error {
	p, ok := c.ResolveModel(model)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownModel, model)
	}
	c.DefaultModel = model
	c.CurrentProvider = p.Name
	return nil
}

// Validate checks the fields required for a provider to be usable.
func (c *RootConfig) Validate() error {
	for _, p := range c.ProviderList() {
		if p.APIBase == "" {
			return fmt.Errorf("provider '%s': api_base is required", p.Name)
		}
		if !strfmt.Default.Validates("uri", p.APIBase) {
			return fmt.Errorf("provider '%s': api_base '%s' is not a valid URI", p.Name, p.APIBase)
		}
	}
	return nil
}

// normalize fills in the provider names from the map keys and makes sure the
// provider map exists.
func (c *RootConfig) normalize() {
	if c.Providers == nil {
		c.Providers = NewProviders()
		return
	}
	for pair := c.Providers.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Name = pair.Key
	}
}

// Default returns the configuration written on first run.
func Default() *RootConfig {
	cfg := &RootConfig{
		DefaultModel:    "gpt-4o",
		CurrentProvider: "openai_official",
		Providers:       NewProviders(),
	}
	cfg.AddProvider(ProviderConfig{
		Name:    "openai_official",
		APIKey:  "sk-YOUR_OFFICIAL_OPENAI_KEY_HERE",
		APIBase: "https://api.openai.com/v1",
		Models:  []string{"gpt-4o", "gpt-3.5-turbo"},
	})
	cfg.AddProvider(ProviderConfig{
		Name:         "ctyun_wishub",
		APIKey:       "YOUR_CTYUN_APP_KEY_HERE",
		APIBase:      "https://wishub-x1.ctyun.cn/v1",
		Models:       []string{"YOUR_CTYUN_MODEL_ID_HERE"},
		SystemPrompt: "You are a Linux command-line expert. Answer concisely and include command examples where possible.",
		ExtraPayload: map[string]any{
			"temperature": 1.0,
			"max_tokens":  4096,
		},
	})
	return cfg
}
