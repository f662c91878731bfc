package discovery

import (
	"encoding/json"
	"testing"

	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegistry(t *testing.T, raw string) *brpschema.RegistrySchema {
	t.Helper()
	reg, err := brpschema.ParseRegistry(json.RawMessage(raw))
	require.NoError(t, err)
	return reg
}

func TestRun_TypeNotInRegistry(t *testing.T) {
	reg := mustRegistry(t, `{"$defs":{}}`)
	outcome := Run(t.Context(), reg, "bevy/mutate_component", "does::not::Exist", nil, nil)
	assert.Equal(t, OutcomeGuidance, outcome.Kind)
	assert.False(t, outcome.Retryable)
	assert.Contains(t, outcome.Message, "not present in the reflection registry")
}

func TestRun_MissingSerialize(t *testing.T) {
	reg := mustRegistry(t, `{"$defs":{"my::Type":{"kind":"Struct","reflectTypes":["Component"]}}}`)
	outcome := Run(t.Context(), reg, "bevy/mutate_component", "my::Type", nil, nil)
	assert.Equal(t, OutcomeGuidance, outcome.Kind)
	assert.False(t, outcome.Retryable)
	assert.Contains(t, outcome.Message, "Serialize+Deserialize")
}

func TestRun_Vec3ObjectToArrayCorrection(t *testing.T) {
	reg := mustRegistry(t, `{"$defs":{"glam::Vec3":{"kind":"Struct","reflectTypes":["Serialize","Deserialize"]}}}`)
	origErr := brperr.New(brperr.CodeProtocol, "invalid type: map, expected a sequence")
	params := json.RawMessage(`{"entity":1,"component":"glam::Vec3","path":"","value":{"x":1.0,"y":2.0,"z":3.0}}`)

	outcome := Run(t.Context(), reg, "bevy/mutate_component", "glam::Vec3", params, origErr)
	require.Equal(t, OutcomeRetry, outcome.Kind)
	assert.True(t, outcome.Retryable)

	var corrected map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(outcome.NewParams, &corrected))
	assert.JSONEq(t, `[1.0,2.0,3.0]`, string(corrected["value"]))
}

func TestRun_EnumUnitVariantCorrection(t *testing.T) {
	reg := mustRegistry(t, `{"$defs":{"my::Visibility":{
		"kind":"Enum","reflectTypes":["Serialize","Deserialize"],
		"oneOf":[{"shortPath":"Visible"},{"shortPath":"Hidden"}]
	}}}`)
	origErr := brperr.New(brperr.CodeProtocol, "invalid type: map, expected a string")
	params := json.RawMessage(`{"entity":1,"component":"my::Visibility","path":"","value":{"Hidden":null}}`)

	outcome := Run(t.Context(), reg, "bevy/mutate_component", "my::Visibility", params, origErr)
	require.Equal(t, OutcomeRetry, outcome.Kind)

	var corrected map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(outcome.NewParams, &corrected))
	assert.JSONEq(t, `"Hidden"`, string(corrected["value"]))
}

func TestRun_NoCorrectorApplies(t *testing.T) {
	reg := mustRegistry(t, `{"$defs":{"my::Type":{"kind":"Struct","reflectTypes":["Serialize","Deserialize"]}}}`)
	origErr := brperr.New(brperr.CodeProtocol, "entity 42 does not exist")
	outcome := Run(t.Context(), reg, "bevy/mutate_component", "my::Type", json.RawMessage(`{}`), origErr)
	assert.Equal(t, OutcomeGuidance, outcome.Kind)
	assert.False(t, outcome.Retryable)
}

func TestIsRetryableHeuristic(t *testing.T) {
	assert.False(t, isRetryableHeuristic(nil))
	assert.False(t, isRetryableHeuristic(brperr.New(brperr.CodeProtocol, "entity not found")))
	assert.True(t, isRetryableHeuristic(brperr.New(brperr.CodeProtocol, "invalid type: expected a sequence")))
}
