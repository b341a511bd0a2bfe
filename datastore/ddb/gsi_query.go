/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/storagemodels"
)

// GSIQueryBuilder provides a fluent interface for building GSI queries
type GSIQueryBuilder[T any] struct {
	store      *DynamodbDataStore[T]
	config     GSIConfig
	params     *storagemodels.QueryParams
	pkValue    string
	skValue    string
	skOperator string // "=", "begins_with"
	filters    []string
	filterVals map[string]types.AttributeValue
}

// QueryGSI creates a new builder over DefaultGSIConfig
func (d *DynamodbDataStore[T]) QueryGSI() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		store:      d,
		config:     DefaultGSIConfig,
		filterVals: make(map[string]types.AttributeValue),
		params: &storagemodels.QueryParams{
			TableName:                 d.tableName,
			ExpressionAttributeNames:  make(map[string]string),
			ExpressionAttributeValues: make(map[string]types.AttributeValue),
		},
	}
}

// WithPartitionKey sets the value substituted into the GSI partition key template, e.g. the
// hex id of the parent event
func (q *GSIQueryBuilder[T]) WithPartitionKey(value string) *GSIQueryBuilder[T] {
	q.pkValue = value
	return q
}

// WithSortKeyPrefix restricts results to sort keys starting with prefix
func (q *GSIQueryBuilder[T]) WithSortKeyPrefix(prefix string) *GSIQueryBuilder[T] {
	q.skValue = prefix
	q.skOperator = "begins_with"
	return q
}

// WithFilter adds a filter expression
func (q *GSIQueryBuilder[T]) WithFilter(expression string, values map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.filters = append(q.filters, expression)
	for k, v := range values {
		q.filterVals[k] = v
	}
	return q
}

// WithLimit sets the query limit
func (q *GSIQueryBuilder[T]) WithLimit(limit int32) *GSIQueryBuilder[T] {
	q.params.Limit = aws.Int32(limit)
	return q
}

// Newest returns results in descending sort key order
func (q *GSIQueryBuilder[T]) Newest() *GSIQueryBuilder[T] {
	q.params.ScanIndexForward = aws.Bool(false)
	return q
}

// Build constructs the final query parameters
func (q *GSIQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, fmt.Errorf("GSI partition key value is required")
	}

	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, fmt.Errorf("no index map found for type %T", *new(T))
	}
	pkTemplate, ok := indexMap.Keys[q.config.PartitionKeyName]
	if !ok {
		return nil, fmt.Errorf("%s not found in index map", q.config.PartitionKeyName)
	}

	q.params.ExpressionAttributeNames["#pk"] = q.config.PartitionKeyName
	q.params.ExpressionAttributeValues[":pk"] = &types.AttributeValueMemberS{
		Value: macroPattern.ReplaceAllLiteralString(pkTemplate, q.pkValue),
	}
	keyConditions := []string{"#pk = :pk"}

	if q.skValue != "" {
		q.params.ExpressionAttributeNames["#sk"] = q.config.SortKeyName
		q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: q.skValue}
		switch q.skOperator {
		case "begins_with":
			keyConditions = append(keyConditions, "begins_with(#sk, :sk)")
		default:
			keyConditions = append(keyConditions, "#sk = :sk")
		}
	}

	q.params.KeyConditionExpression = strings.Join(keyConditions, " AND ")
	q.params.IndexName = aws.String(q.config.IndexName)

	if len(q.filters) > 0 {
		q.params.FilterExpression = aws.String(strings.Join(q.filters, " AND "))
		for k, v := range q.filterVals {
			q.params.ExpressionAttributeValues[k] = v
		}
	}

	return q.params, nil
}

// Execute runs the query and keeps the results of type T. Other entity types sharing the
// partition are skipped.
func (q *GSIQueryBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}

	results, err := q.store.Query(ctx, params)
	if err != nil {
		return nil, err
	}

	typedResults := make([]T, 0, len(results))
	for _, r := range results {
		if typed, ok := r.(T); ok {
			typedResults = append(typedResults, typed)
		} else if typed, ok := r.(*T); ok {
			typedResults = append(typedResults, *typed)
		}
	}
	return typedResults, nil
}

// QueryByGSI1PK queries using only the GSI1 partition key
func (d *DynamodbDataStore[T]) QueryByGSI1PK(ctx context.Context, pkValue string) ([]T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		Execute(ctx)
}

// QueryByGSI1PKAndSKPrefix queries using GSI1 partition key and sort key prefix
func (d *DynamodbDataStore[T]) QueryByGSI1PKAndSKPrefix(ctx context.Context, pkValue, skPrefix string) ([]T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		WithSortKeyPrefix(skPrefix).
		Execute(ctx)
}
