package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region response

// affectResponse is the structured output requested from the model. Every
// field is required so the schema is valid in strict mode.
type affectResponse struct {
	Joy       float64 `json:"joy" jsonschema:"required,description=Delight or happiness from 0 to 1"`
	Curiosity float64 `json:"curiosity" jsonschema:"required,description=Inquisitiveness or interest from 0 to 1"`
	Wonder    float64 `json:"wonder" jsonschema:"required,description=Enchantment or amazement from 0 to 1"`
	Serenity  float64 `json:"serenity" jsonschema:"required,description=Calm or peacefulness from 0 to 1"`
	Longing   float64 `json:"longing" jsonschema:"required,description=Nostalgia or yearning from 0 to 1"`
	Tension   float64 `json:"tension" jsonschema:"required,description=Stress anxiety or anger from 0 to 1"`
	Awe       float64 `json:"awe" jsonschema:"required,description=Sense of vastness or the sublime from 0 to 1"`
}

func (r affectResponse) partial() affect.Partial {
	return affect.Partial{
		affect.Joy:       r.Joy,
		affect.Curiosity: r.Curiosity,
		affect.Wonder:    r.Wonder,
		affect.Serenity:  r.Serenity,
		affect.Longing:   r.Longing,
		affect.Tension:   r.Tension,
		affect.Awe:       r.Awe,
	}
}

// #endregion response

// #region schema

// GenerateSchema reflects T into a JSON schema map accepted by the
// structured-output endpoint.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	m, err := schemaToMap(schema)
	if err != nil {
		panic(fmt.Sprintf("generate schema: %v", err))
	}
	ensureStrict(m)
	return m
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureStrict closes every object and marks all of its properties
// required, recursing into nested properties and array items.
func ensureStrict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrict(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrict(items)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
}

// #endregion schema

// #region decode

// DecodeModelJSON unmarshals model output, tolerating surrounding prose or
// whitespace by falling back to the outermost {...} span.
func DecodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}

// #endregion decode
