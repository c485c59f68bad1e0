package config

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema describes the configuration document as a JSON Schema.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	s := r.Reflect(&RootConfig{})
	s.Title = "ag configuration"

	provider := r.Reflect(&ProviderConfig{})
	provider.Version = ""
	provider.ID = ""

	// The ordered provider map has no exported fields, so its reflected shape is
	// replaced with an object keyed by provider name.
	if s.Properties == nil {
		s.Properties = orderedmap.New[string, *jsonschema.Schema]()
	}
	s.Properties.Set("providers", &jsonschema.Schema{
		Type:                 "object",
		Description:          "API providers keyed by name",
		AdditionalProperties: provider,
	})
	return s
}
