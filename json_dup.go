package domap

import (
	"bytes"
	"context"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

// DetectDuplicateKeys scans a JSON document and reports every object key
// that appears more than once, at its pointer path. Map decoding keeps
// the last occurrence silently, so input that must be trustworthy should
// be screened before loading. Malformed input yields a single parse
// issue at the document root.
func DetectDuplicateKeys(data []byte) vschema.Issues {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d := dupScanner{dec: dec}
	if err := d.value(""); err != nil {
		return vschema.Issues{{
			Path:    "",
			Code:    vschema.CodeParseError,
			Message: i18n.T("Invalid input."),
			Cause:   err,
		}}
	}
	return d.issues
}

// LoadJSONStrict is LoadJSON with the duplicate-key screen in front:
// input that repeats an object key anywhere is rejected before any field
// loads.
func LoadJSONStrict(ctx context.Context, s *Schema, data []byte) (map[string]any, error) {
	if iss := DetectDuplicateKeys(data); len(iss) > 0 {
		return nil, iss
	}
	return LoadJSON(ctx, s, data)
}

type dupScanner struct {
	dec    *gojson.Decoder
	issues vschema.Issues
}

func (d *dupScanner) value(path string) error {
	tok, err := d.dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(gojson.Delim); ok {
		switch delim {
		case '{':
			return d.object(path)
		case '[':
			return d.array(path)
		}
	}
	return nil
}

func (d *dupScanner) object(path string) error {
	seen := map[string]bool{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		child := path + "/" + key
		if seen[key] {
			d.issues = vschema.AppendIssues(d.issues, vschema.NewIssue(
				child, vschema.CodeDuplicateKey, "Duplicate object key.", map[string]any{"field": key},
			))
		}
		seen[key] = true
		if err := d.value(child); err != nil {
			return err
		}
	}
	_, err := d.dec.Token() // closing brace
	return err
}

func (d *dupScanner) array(path string) error {
	for i := 0; d.dec.More(); i++ {
		if err := d.value(path + "/" + strconv.Itoa(i)); err != nil {
			return err
		}
	}
	_, err := d.dec.Token() // closing bracket
	return err
}
