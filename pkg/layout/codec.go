package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Codec names accepted by [CodecByName].
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
	CodecYAML = "yaml"
)

// Codec encodes and decodes layout records. Implementations must accept any
// value the JSON codec accepts, so a layout survives a codec change.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CodecByName returns the codec registered under name (case-insensitive).
// An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSON, nil
	case CodecCBOR:
		return CBOR, nil
	case CodecYAML, "yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want json, cbor or yaml)", name)
	}
}

// =============================================================================
// JSON
// =============================================================================

// JSON is the default persisted format.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return CodecJSON }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.MarshalIndent(v, "", "  ") }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// =============================================================================
// CBOR
// =============================================================================

// CBOR is a compact binary encoding for snapshots. Keys are emitted in
// canonical order so identical layouts encode to identical bytes.
var CBOR Codec = newCBORCodec()

type cborCodec struct {
	enc cbor.EncMode
}

func newCBORCodec() cborCodec {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("layout: failed to create CBOR enc mode: %v", err))
	}
	return cborCodec{enc: em}
}

func (cborCodec) Name() string { return CodecCBOR }

func (c cborCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return err
	}
	normalizeDecoded(v)
	return nil
}

// normalizeDecoded rewrites nested map[any]any values produced by the CBOR
// decoder into map[string]any so settings compare equal across codecs.
func normalizeDecoded(v any) {
	switch t := v.(type) {
	case *[]Widget:
		for i := range *t {
			(*t)[i].Settings = normalizeSettings((*t)[i].Settings)
		}
	case *Widget:
		t.Settings = normalizeSettings(t.Settings)
	}
}

func normalizeSettings(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return out
	case map[string]any:
		return normalizeSettings(t)
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	default:
		return v
	}
}

// =============================================================================
// YAML
// =============================================================================

// YAML is the human-editable import/export format.
var YAML Codec = yamlCodec{}

type yamlCodec struct{}

func (yamlCodec) Name() string                       { return CodecYAML }
func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
