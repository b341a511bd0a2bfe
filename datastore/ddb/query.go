/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/storagemodels"
)

// Query performs a query against the table and follows pagination until params.Limit items
// are collected or the result set ends. It uses the EntityType attribute injected at insert
// time to pick the unmarshal function from the type registry, so one query over a shared GSI
// partition (an organization's events and posts, say) returns each item as its own type.
func (d *DynamodbDataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error) {
	input := &dynamodb.QueryInput{
		TableName:                 &params.TableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ScanIndexForward:          params.ScanIndexForward,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}

	var results []interface{}
	for {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		for _, item := range out.Items {
			obj, err := unmarshalTyped(item)
			if err != nil {
				return nil, err
			}
			results = append(results, obj)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return results, nil
		}
		if params.Limit != nil && int32(len(results)) >= *params.Limit {
			return results, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func unmarshalTyped(item map[string]types.AttributeValue) (interface{}, error) {
	var entityType string
	attr, ok := item[attrEntityType]
	if !ok {
		return nil, fmt.Errorf("missing EntityType attribute in item")
	}
	if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
		return nil, fmt.Errorf("failed to unmarshal EntityType: %w", err)
	}

	unmarshalFn, err := registry.GetUnmarshalFunc(entityType)
	if err != nil {
		// Unknown types come back as generic maps.
		var generic map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &generic); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic item: %w", err)
		}
		return generic, nil
	}

	obj, err := unmarshalFn(item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item for EntityType %q: %w", entityType, err)
	}
	return obj, nil
}
