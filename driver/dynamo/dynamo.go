// Package dynamo maps storage documents onto DynamoDB items and builds
// the request inputs a repository needs: table definitions, point
// reads, unique-value lookups, and the conditional write transactions
// that enforce uniqueness. The package only assembles SDK input values;
// it never opens a connection. Callers own the client and every actual
// round trip.
package dynamo

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	gojson "github.com/goccy/go-json"
)

// MarshalDocument converts a storage document into DynamoDB attribute
// values. It supports exactly the value types storage conversion
// emits: strings, booleans, int64, float64, json.Number, nil, nested
// maps and slices.
func MarshalDocument(doc map[string]any) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(doc))
	for key, v := range doc {
		av, err := MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		item[key] = av
	}
	return item, nil
}

// MarshalValue converts one storage value into an attribute value.
func MarshalValue(v any) (types.AttributeValue, error) {
	switch x := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: x}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: x}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(x), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case gojson.Number:
		return &types.AttributeValueMemberN{Value: x.String()}, nil
	case []any:
		vals := make([]types.AttributeValue, len(x))
		for i, el := range x {
			av, err := MarshalValue(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			vals[i] = av
		}
		return &types.AttributeValueMemberL{Value: vals}, nil
	case map[string]any:
		m, err := MarshalDocument(x)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("dynamo: unsupported value %T", v)
	}
}

// UnmarshalDocument converts a DynamoDB item back into the storage
// document MarshalDocument produced. Number attributes parse to int64
// when integral and float64 otherwise; field converters widen them to
// the declared type on hydration.
func UnmarshalDocument(item map[string]types.AttributeValue) (map[string]any, error) {
	doc := make(map[string]any, len(item))
	for key, av := range item {
		v, err := UnmarshalValue(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		doc[key] = v
	}
	return doc, nil
}

// UnmarshalValue converts one attribute value back into a storage value.
func UnmarshalValue(av types.AttributeValue) (any, error) {
	switch x := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberS:
		return x.Value, nil
	case *types.AttributeValueMemberBOOL:
		return x.Value, nil
	case *types.AttributeValueMemberN:
		if n, err := strconv.ParseInt(x.Value, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(x.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("dynamo: malformed number %q", x.Value)
		}
		return f, nil
	case *types.AttributeValueMemberL:
		out := make([]any, len(x.Value))
		for i, el := range x.Value {
			v, err := UnmarshalValue(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case *types.AttributeValueMemberM:
		return UnmarshalDocument(x.Value)
	default:
		return nil, fmt.Errorf("dynamo: unsupported attribute %T", av)
	}
}
