/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sync"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient records requests and answers them from canned responses.
type fakeClient struct {
	mu sync.Mutex

	puts    []*sdk.PutItemInput
	updates []*sdk.UpdateItemInput
	queries []*sdk.QueryInput
	scans   []*sdk.ScanInput

	getItem   map[string]types.AttributeValue
	putErr    error
	updateOut map[string]types.AttributeValue
	updateErr error
	pages     [][]map[string]types.AttributeValue
}

func (f *fakeClient) GetItem(_ context.Context, _ *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	return &sdk.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	return &sdk.PutItemOutput{}, f.putErr
}

func (f *fakeClient) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &sdk.UpdateItemOutput{Attributes: f.updateOut}, nil
}

func (f *fakeClient) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	return f.page(len(f.queries) - 1)
}

func (f *fakeClient) Scan(_ context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, in)
	out, err := f.page(len(f.scans) - 1)
	if err != nil {
		return nil, err
	}
	return &sdk.ScanOutput{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

func (f *fakeClient) page(i int) (*sdk.QueryOutput, error) {
	if i >= len(f.pages) {
		return &sdk.QueryOutput{}, nil
	}
	out := &sdk.QueryOutput{Items: f.pages[i]}
	if i+1 < len(f.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "next"},
		}
	}
	return out, nil
}
