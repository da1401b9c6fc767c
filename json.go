package domap

import (
	"bytes"
	"context"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

// LoadJSON decodes one JSON object and loads it through s. Numbers are
// preserved as json.Number so integer fields keep full precision.
// Malformed input or trailing data yields a parse issue at the document
// root.
func LoadJSON(ctx context.Context, s *Schema, data []byte) (map[string]any, error) {
	raw, err := decodeObject(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, raw)
}

// LoadJSONReader is LoadJSON over a stream.
func LoadJSONReader(ctx context.Context, s *Schema, r io.Reader) (map[string]any, error) {
	raw, err := decodeObject(r)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, raw)
}

// LoadJSONWithMeta is LoadJSON plus per-field presence metadata.
func LoadJSONWithMeta(ctx context.Context, s *Schema, data []byte) (vschema.Decoded[map[string]any], error) {
	raw, err := decodeObject(bytes.NewReader(data))
	if err != nil {
		return vschema.Decoded[map[string]any]{}, err
	}
	return s.LoadWithMeta(ctx, raw)
}

// DumpJSON dumps data through s and encodes the result as JSON.
func DumpJSON(ctx context.Context, s *Schema, data map[string]any) ([]byte, error) {
	out, err := s.Dump(ctx, data)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(out)
}

func decodeObject(r io.Reader) (map[string]any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, vschema.Issues{{
			Path:    "",
			Code:    vschema.CodeParseError,
			Message: i18n.T("Invalid input."),
			Cause:   err,
		}}
	}
	if dec.More() {
		return nil, vschema.Issues{{
			Path:    "",
			Code:    vschema.CodeParseError,
			Message: i18n.T("Invalid input."),
		}}
	}
	return raw, nil
}
