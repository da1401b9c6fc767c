package dynamo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/reoring/domap"
)

// ConstraintSuffix names the companion table holding uniqueness
// markers. It shares the collection table's hash key attribute.
const ConstraintSuffix = "_constraints"

const conditionalCheckFailed = "ConditionalCheckFailed"

// Check pairs a conditional marker write with the constraint path it
// enforces, so a cancelled transaction can be traced back to the value
// that collided.
type Check struct {
	Path string
	Item types.TransactWriteItem
}

// UniquenessChecks builds one conditional put per unique value the
// document carries. Each marker claims <table>#<path>#<value> and the
// put fails unless the marker is free or already owned by id, so
// rewriting a document with unchanged values succeeds while a second
// document claiming the same value cancels the transaction. Absent and
// null values produce no marker: a required unique field cannot be
// absent after validation, and a sparse one admits any number of nulls.
func UniquenessChecks(s *domap.Schema, table, id string, doc map[string]any) []Check {
	var checks []Check
	for _, idx := range s.Indexes() {
		for _, v := range collectValues(doc, idx.Path) {
			checks = append(checks, Check{
				Path: idx.Path,
				Item: types.TransactWriteItem{
					Put: &types.Put{
						TableName: aws.String(table + ConstraintSuffix),
						Item: map[string]types.AttributeValue{
							KeyAttribute: &types.AttributeValueMemberS{Value: markerKey(table, idx.Path, v)},
							"path":       &types.AttributeValueMemberS{Value: idx.Path},
							"owner":      &types.AttributeValueMemberS{Value: id},
						},
						ConditionExpression:       aws.String("attribute_not_exists(#k) OR #o = :o"),
						ExpressionAttributeNames:  map[string]string{"#k": KeyAttribute, "#o": "owner"},
						ExpressionAttributeValues: map[string]types.AttributeValue{":o": &types.AttributeValueMemberS{Value: id}},
					},
				},
			})
		}
	}
	return checks
}

// ReleaseChecks builds the deletes that free markers the document no
// longer holds, for updates that change or drop a unique value. Passing
// a nil current document releases every marker.
func ReleaseChecks(s *domap.Schema, table string, previous, current map[string]any) []types.TransactWriteItem {
	keep := markerKeys(s, table, current)
	var stale []string
	for key := range markerKeys(s, table, previous) {
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	items := make([]types.TransactWriteItem, 0, len(stale))
	for _, key := range stale {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(table + ConstraintSuffix),
				Key: map[string]types.AttributeValue{
					KeyAttribute: &types.AttributeValueMemberS{Value: key},
				},
			},
		})
	}
	return items
}

// PutItem builds the document write itself. A fresh document must not
// collide with an existing id; a replacement overwrites the stored item
// wholesale. Partial updates are deliberately unsupported.
func PutItem(table string, item map[string]types.AttributeValue, fresh bool) types.TransactWriteItem {
	put := &types.Put{TableName: aws.String(table), Item: item}
	if fresh {
		put.ConditionExpression = aws.String("attribute_not_exists(" + KeyAttribute + ")")
	}
	return types.TransactWriteItem{Put: put}
}

// WriteTransaction assembles the complete conditional write for a
// document: its uniqueness markers first, then the releases for values
// it gave up, then the document put. A nil previous document means a
// fresh insert, which additionally requires an unclaimed id. The
// returned checks line up with the leading transaction items and feed
// MapCancellation.
func WriteTransaction(s *domap.Schema, table, id string, previous, current map[string]any) (*dynamodb.TransactWriteItemsInput, []Check, error) {
	item, err := MarshalDocument(current)
	if err != nil {
		return nil, nil, err
	}
	checks := UniquenessChecks(s, table, id, current)
	items := make([]types.TransactWriteItem, 0, len(checks)+2)
	for _, c := range checks {
		items = append(items, c.Item)
	}
	items = append(items, ReleaseChecks(s, table, previous, current)...)
	items = append(items, PutItem(table, item, previous == nil))
	return &dynamodb.TransactWriteItemsInput{TransactItems: items}, checks, nil
}

// DeleteTransaction removes the document and frees every uniqueness
// marker it holds.
func DeleteTransaction(s *domap.Schema, table, id string, doc map[string]any) (*dynamodb.TransactWriteItemsInput, error) {
	key, err := Key(id)
	if err != nil {
		return nil, err
	}
	items := ReleaseChecks(s, table, doc, nil)
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{TableName: aws.String(table), Key: key},
	})
	return &dynamodb.TransactWriteItemsInput{TransactItems: items}, nil
}

// MapCancellation translates a cancelled write transaction into the
// uniqueness failure that caused it. The checks must be the ones the
// transaction was submitted with, in order, so cancellation reasons
// line up by position. Errors with no failed marker pass through
// unchanged.
func MapCancellation(s *domap.Schema, checks []Check, err error) error {
	if err == nil {
		return nil
	}
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		return err
	}
	for i, reason := range cancelled.CancellationReasons {
		if aws.ToString(reason.Code) != conditionalCheckFailed || i >= len(checks) {
			continue
		}
		if f, ok := fieldAtStorePath(s, checks[i].Path); ok {
			return domap.NewUniquenessError(f)
		}
	}
	return err
}

func markerKey(table, path string, v any) string {
	return fmt.Sprintf("%s#%s#%v", table, path, v)
}

func markerKeys(s *domap.Schema, table string, doc map[string]any) map[string]bool {
	keys := make(map[string]bool)
	for _, idx := range s.Indexes() {
		for _, v := range collectValues(doc, idx.Path) {
			keys[markerKey(table, idx.Path, v)] = true
		}
	}
	return keys
}

// collectValues resolves a dotted storage path against a document,
// fanning out across list elements. Absent and null values are
// dropped.
func collectValues(doc map[string]any, path string) []any {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := doc[head]
	if !ok || v == nil {
		return nil
	}
	if !nested {
		return []any{v}
	}
	switch sub := v.(type) {
	case map[string]any:
		return collectValues(sub, rest)
	case []any:
		var out []any
		for _, el := range sub {
			if m, ok := el.(map[string]any); ok {
				out = append(out, collectValues(m, rest)...)
			}
		}
		return out
	default:
		return nil
	}
}

func fieldAtStorePath(s *domap.Schema, path string) (*domap.Field, bool) {
	head, rest, nested := strings.Cut(path, ".")
	f, ok := s.FieldByStoreKey(head)
	if !ok {
		return nil, false
	}
	if !nested {
		return f, true
	}
	switch {
	case f.Sub() != nil:
		return fieldAtStorePath(f.Sub(), rest)
	case f.Elem() != nil && f.Elem().Sub() != nil:
		return fieldAtStorePath(f.Elem().Sub(), rest)
	}
	return nil, false
}
