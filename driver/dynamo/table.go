package dynamo

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/reoring/domap"
)

// KeyAttribute is the hash key every collection table uses. Documents
// are stored whole under their id and replaced whole on update.
const KeyAttribute = "id"

// TableSpec assembles the CreateTable request for a collection: a
// string hash key, on-demand billing, and one keys-only index per
// top-level unique constraint so lookups by unique value stay cheap.
// Nested constraint paths cannot key an index; their markers still
// enforce them.
func TableSpec(s *domap.Schema, table string) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(KeyAttribute), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(KeyAttribute), AttributeType: types.ScalarAttributeTypeS},
		},
	}
	for _, idx := range s.Indexes() {
		if strings.Contains(idx.Path, ".") || idx.Path == KeyAttribute {
			continue
		}
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName: aws.String(IndexName(idx.Path)),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(idx.Path), KeyType: types.KeyTypeHash},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeKeysOnly},
		})
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(idx.Path),
			AttributeType: attributeTypeFor(s, idx.Path),
		})
	}
	return input
}

// IndexName names the lookup index for a unique attribute.
func IndexName(path string) string { return "uniq_" + path }

func attributeTypeFor(s *domap.Schema, path string) types.ScalarAttributeType {
	f, ok := s.FieldByStoreKey(path)
	if !ok {
		return types.ScalarAttributeTypeS
	}
	switch f.TypeName() {
	case "int", "float":
		return types.ScalarAttributeTypeN
	default:
		return types.ScalarAttributeTypeS
	}
}

// Key builds the primary key attribute map for a document id.
func Key(id string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{KeyAttribute: id})
}

// GetItem builds the consistent point read for one document.
func GetItem(table, id string) (*dynamodb.GetItemInput, error) {
	key, err := Key(id)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}, nil
}

// QueryByUnique builds the index lookup that finds the document holding
// a unique value. The path must name a top-level unique attribute, the
// same ones TableSpec indexes.
func QueryByUnique(s *domap.Schema, table, path string, value any) (*dynamodb.QueryInput, error) {
	f, ok := s.FieldByStoreKey(path)
	if !ok || !f.Unique() {
		return nil, fmt.Errorf("dynamo: %q is not a unique attribute of %s", path, s.Name())
	}
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(IndexName(path)),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": path},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": av},
		Limit:                     aws.Int32(1),
	}, nil
}
