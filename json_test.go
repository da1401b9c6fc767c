package domap_test

import (
	"context"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
	"github.com/reoring/domap/vschema"
)

func TestLoadJSON_PreservesIntegerPrecision(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Counter", fields.Int("value"))

	// 2^53+1 is not representable as float64; json.Number decoding keeps
	// it exact.
	got, err := domap.LoadJSON(ctx, s, []byte(`{"value": 9007199254740993}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got["value"] != int64(9007199254740993) {
		t.Fatalf("precision lost: %#v", got["value"])
	}
}

func TestLoadJSON_ParseFailures(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Doc", fields.Str("title"))

	for _, payload := range []string{`{"title": `, `{"title": "x"} trailing`} {
		_, err := domap.LoadJSON(ctx, s, []byte(payload))
		iss, ok := vschema.AsIssues(err)
		if !ok || len(iss) != 1 || iss[0].Code != vschema.CodeParseError || iss[0].Path != "" {
			t.Fatalf("payload %q: expected a parse issue at the root, got %v", payload, err)
		}
	}
}

func TestDumpJSON(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Doc",
		fields.Str("title"),
		fields.Int("views", domap.Default(int64(0))),
	)

	data, err := s.Load(ctx, map[string]any{"title": "hello"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := domap.DumpJSON(ctx, s, data)
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}

	var round map[string]any
	if err := gojson.Unmarshal(out, &round); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if round["title"] != "hello" || round["views"] != float64(0) {
		t.Fatalf("unexpected dump output: %s", out)
	}
}
