package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"github.com/oklog/ulid/v2"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.ScanAPIClient
}

// DynamoStore keeps applications in a DynamoDB table keyed by the string attribute "id".
// Ids are ULIDs so that they sort by creation time.
type DynamoStore struct {
	DB    DynamoAPI
	Table string
}

func NewDynamoStore(db DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{DB: db, Table: table}
}

func (s *DynamoStore) Insert(ctx context.Context, app models.Application) (*models.Application, error) {
	app.ID = ulid.Make().String()
	item, err := attributevalue.MarshalMap(app)
	if err != nil {
		return nil, newError(KindUnavailable, "insert", err)
	}
	_, err = s.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, classifyDynamo("insert", err)
	}
	return &app, nil
}

func (s *DynamoStore) Select(ctx context.Context) ([]models.Application, error) {
	apps := []models.Application{}
	p := dynamodb.NewScanPaginator(s.DB, &dynamodb.ScanInput{TableName: aws.String(s.Table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classifyDynamo("select", err)
		}
		var batch []models.Application
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, newError(KindUnavailable, "select", err)
		}
		apps = append(apps, batch...)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].AppliedDate.After(apps[j].AppliedDate)
	})
	return apps, nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (*models.Application, error) {
	out, err := s.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, classifyDynamo("get", err)
	}
	if out.Item == nil {
		return nil, newError(KindNotFound, "get", nil)
	}
	var app models.Application
	if err := attributevalue.UnmarshalMap(out.Item, &app); err != nil {
		return nil, newError(KindUnavailable, "get", err)
	}
	return &app, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, patch Patch) (*models.Application, error) {
	if patch.Status == nil {
		return s.Get(ctx, id)
	}
	out, err := s.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.Table),
		Key:                      idKey(id),
		UpdateExpression:         aws.String("SET #status = :status"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(*patch.Status)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, classifyDynamo("update", err)
	}
	var app models.Application
	if err := attributevalue.UnmarshalMap(out.Attributes, &app); err != nil {
		return nil, newError(KindUnavailable, "update", err)
	}
	return &app, nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return classifyDynamo("delete", err)
	}
	return nil
}

// AllowedStatuses reports no enforcement: DynamoDB tables are schemaless beyond the key.
func (s *DynamoStore) AllowedStatuses(ctx context.Context) ([]string, bool, error) {
	return nil, false, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func classifyDynamo(op string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) && op != "insert" {
		return newError(KindNotFound, op, err)
	}
	return newError(KindUnavailable, op, err)
}
