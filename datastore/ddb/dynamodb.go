/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph/datastore"
	storeerrors "github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
)

// Reserved attribute names of the single-table layout.
const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrID         = "ID"
	attrEntityType = "EntityType"
	attrCreatedAt  = "createdAt"
	attrUpdatedAt  = "updatedAt"
)

// Client is the subset of the DynamoDB API the store uses. *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, in *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// ClientConfig holds the connection settings for NewDynamoDBClient.
type ClientConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// DynamodbDataStore implements datastore.DataStore[T] on a single DynamoDB table. Keys come from
// the index map registered for T.
type DynamodbDataStore[T any] struct {
	client    Client
	tableName string
	now       func() time.Time
	logger    *zap.Logger
}

var _ datastore.DataStore[models.User] = (*DynamodbDataStore[models.User])(nil)

// Option configures a DynamodbDataStore.
type Option func(*storeOptions)

type storeOptions struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock replaces the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *storeOptions) { o.logger = logger }
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros fills the templates of indexMap from the attributes in av. Templates whose
// macros cannot all be resolved are left out, so an entity without a parent reference does not
// land in that parent's GSI partition.
func expandMacros(indexMap map[string]string, av map[string]types.AttributeValue) map[string]string {
	res := make(map[string]string, len(indexMap))
	for fieldName, template := range indexMap {
		resolved := true
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			val, ok := attributeString(av[strings.Trim(macro, "{}")])
			if !ok || val == "" {
				resolved = false
			}
			return val
		})
		if resolved {
			res[fieldName] = expanded
		}
	}
	return res
}

func attributeString(val types.AttributeValue) (string, bool) {
	switch tv := val.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, true
	case *types.AttributeValueMemberN:
		return tv.Value, true
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("%v", tv.Value), true
	default:
		return "", false
	}
}

// NewDynamoDBClient initializes a DynamoDB client using static AWS credentials.
func NewDynamoDBClient(ctx context.Context, cfg ClientConfig, logger *zap.Logger) (*sdk.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("DynamoDB client initialized",
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint))
	return client, nil
}

// NewDynamodbDataStore constructs a store for type T on tableName. T must have a registered
// index map.
func NewDynamodbDataStore[T any](client Client, tableName string, opts ...Option) (*DynamodbDataStore[T], error) {
	if _, ok := registry.GetIndexMap[T](); !ok {
		return nil, fmt.Errorf("%w for %T", storeerrors.ErrNoIndexMap, *new(T))
	}
	o := storeOptions{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &DynamodbDataStore[T]{
		client:    client,
		tableName: tableName,
		now:       o.now,
		logger:    o.logger,
	}, nil
}

func (d *DynamodbDataStore[T]) indexMap() (registry.IndexMap, error) {
	m, ok := registry.GetIndexMap[T]()
	if !ok {
		return registry.IndexMap{}, storeerrors.ErrNoIndexMap
	}
	return m, nil
}

// FindOne retrieves a single item by id, or nil if no item is found.
func (d *DynamodbDataStore[T]) FindOne(ctx context.Context, id models.ID) (*T, error) {
	indexMap, err := d.indexMap()
	if err != nil {
		return nil, err
	}
	key, err := keyForID(indexMap, id)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Insert stores a new item. Keys are expanded from the index map, EntityType is injected for
// polymorphic queries, and the write fails if an item with the same key exists.
func (d *DynamodbDataStore[T]) Insert(ctx context.Context, entity T) (*T, error) {
	indexMap, err := d.indexMap()
	if err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	dropNulls(av)

	id, ok := attributeString(av[attrID])
	if !ok || id == "" || id == models.NilID.Hex() {
		id = models.NewID().Hex()
		av[attrID] = &types.AttributeValueMemberS{Value: id}
	}
	now, err := attributevalue.Marshal(d.timestamp())
	if err != nil {
		return nil, err
	}
	av[attrCreatedAt] = now
	av[attrUpdatedAt] = now

	for k, v := range expandMacros(indexMap.Keys, av) {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	av[attrEntityType] = &types.AttributeValueMemberS{Value: indexMap.EntityType}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &d.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, storeerrors.NewAlreadyExistsError(indexMap.EntityType, id)
		}
		return nil, fmt.Errorf("PutItem failed: %w", err)
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(av, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// FindOneAndUpdate applies update with a single conditional UpdateItem call and returns the
// new image.
//
// DynamoDB lists have no add-to-set action, so AddToSet is guarded by a NOT contains condition:
// adding an element that is already present fails with a condition error instead of being a
// no-op.
func (d *DynamodbDataStore[T]) FindOneAndUpdate(ctx context.Context, id models.ID, update datastore.Update) (*T, error) {
	indexMap, err := d.indexMap()
	if err != nil {
		return nil, err
	}
	key, err := keyForID(indexMap, id)
	if err != nil {
		return nil, err
	}

	expr, err := buildUpdateExpression(update, d.timestamp())
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}
	if err := expr.rewriteKeys(indexMap.Keys, id, update.Set); err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                           &d.tableName,
		Key:                                 key,
		UpdateExpression:                    aws.String(expr.update()),
		ConditionExpression:                 aws.String(expr.condition()),
		ExpressionAttributeNames:            expr.names,
		ExpressionAttributeValues:           expr.values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			if len(cfe.Item) == 0 {
				return nil, storeerrors.NewNotFoundError(
					fmt.Sprintf("%s %s not found", indexMap.EntityType, id.Hex()), storeerrors.CodeNotFound, "_id")
			}
			return nil, storeerrors.NewConditionFailedError("update "+indexMap.EntityType, expr.condition())
		}
		return nil, fmt.Errorf("UpdateItem failed: %w", err)
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Attributes, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Find returns items of type T matching filter. A filter on the field behind the GSI1 partition
// key is served by a GSI query; anything else scans the table for the entity type.
func (d *DynamodbDataStore[T]) Find(ctx context.Context, filter datastore.Filter) ([]T, error) {
	indexMap, err := d.indexMap()
	if err != nil {
		return nil, err
	}
	normalized, err := datastore.Normalize(filter)
	if err != nil {
		return nil, err
	}

	var candidates []T
	if field, value, ok := gsiPartitionFilter(indexMap, filter); ok {
		d.logger.Debug("find via GSI", zap.String("entity", indexMap.EntityType), zap.String("field", field))
		candidates, err = d.QueryGSI().WithPartitionKey(value).Execute(ctx)
	} else {
		candidates, err = d.scan(ctx, indexMap.EntityType)
	}
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(candidates))
	for _, c := range candidates {
		doc, err := datastore.ToDocument(c)
		if err != nil {
			return nil, err
		}
		if datastore.Matches(doc, normalized) {
			results = append(results, c)
		}
	}
	return results, nil
}

func (d *DynamodbDataStore[T]) scan(ctx context.Context, entityType string) ([]T, error) {
	var (
		results []T
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := d.client.Scan(ctx, &sdk.ScanInput{
			TableName:                &d.tableName,
			FilterExpression:         aws.String("#et = :et"),
			ExpressionAttributeNames: map[string]string{"#et": attrEntityType},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":et": &types.AttributeValueMemberS{Value: entityType},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		for _, item := range out.Items {
			v := new(T)
			if err := attributevalue.UnmarshalMap(item, v); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item: %w", err)
			}
			results = append(results, *v)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return results, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// gsiPartitionFilter reports whether filter names the single field GSI1PK is built from.
func gsiPartitionFilter(indexMap registry.IndexMap, filter datastore.Filter) (string, string, bool) {
	template, ok := indexMap.Keys[DefaultGSIConfig.PartitionKeyName]
	if !ok {
		return "", "", false
	}
	macros := macroPattern.FindAllStringSubmatch(template, -1)
	if len(macros) != 1 {
		return "", "", false
	}
	field := macros[0][1]
	raw, ok := filter[field]
	if !ok {
		return "", "", false
	}
	switch v := raw.(type) {
	case models.ID:
		return field, v.Hex(), true
	case string:
		return field, v, true
	}
	return "", "", false
}

func (d *DynamodbDataStore[T]) timestamp() time.Time {
	return d.now().UTC().Truncate(time.Millisecond)
}

// keyForID builds the primary key of the item whose ID is id.
func keyForID(indexMap registry.IndexMap, id models.ID) (map[string]types.AttributeValue, error) {
	if id.IsZero() {
		return nil, storeerrors.NewValidationError("_id", "identifier is required")
	}
	av := map[string]types.AttributeValue{attrID: &types.AttributeValueMemberS{Value: id.Hex()}}
	expanded := expandMacros(map[string]string{
		attrPK: indexMap.Keys[attrPK],
		attrSK: indexMap.Keys[attrSK],
	}, av)
	return buildKeyFromExpanded(expanded)
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded[attrPK]
	sk, okSK := expanded[attrSK]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// dropNulls removes NULL attributes so if_not_exists sees unset fields as missing.
func dropNulls(av map[string]types.AttributeValue) {
	for k, v := range av {
		if _, ok := v.(*types.AttributeValueMemberNULL); ok {
			delete(av, k)
		}
	}
}
