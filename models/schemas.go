/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/schema"
)

//go:embed schemas.yaml
var schemaYAML []byte

var (
	schemasOnce sync.Once
	schemas     map[string]*schema.Schema
	schemasErr  error
)

// Schemas returns the application schemas keyed by entity name.
func Schemas() (map[string]*schema.Schema, error) {
	schemasOnce.Do(func() {
		parsed, err := schema.ParseBytes(schemaYAML)
		if err != nil {
			schemasErr = fmt.Errorf("embedded schemas: %w", err)
			return
		}
		schemas = schema.Index(parsed)
	})
	return schemas, schemasErr
}

// SchemaFor returns the schema of one entity.
func SchemaFor(name string) (*schema.Schema, error) {
	all, err := Schemas()
	if err != nil {
		return nil, err
	}
	s, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("no schema declared for %s", name)
	}
	return s, nil
}

// MustSchema is SchemaFor for wiring code where a missing schema is a programming error.
func MustSchema(name string) *schema.Schema {
	s, err := SchemaFor(name)
	if err != nil {
		panic(err)
	}
	return s
}

func init() {
	register[User](EntityUser, map[string]string{
		"PK": "USER#{ID}",
		"SK": "USER#{ID}",
	})
	register[Organization](EntityOrganization, map[string]string{
		"PK": "ORG#{ID}",
		"SK": "ORG#{ID}",
	})
	register[Event](EntityEvent, map[string]string{
		"PK":     "EVENT#{ID}",
		"SK":     "EVENT#{ID}",
		"GSI1PK": "ORG#{organization}",
		"GSI1SK": "EVENT#{ID}",
	})
	register[EventProject](EntityEventProject, map[string]string{
		"PK":     "EVENTPROJECT#{ID}",
		"SK":     "EVENTPROJECT#{ID}",
		"GSI1PK": "EVENT#{event}",
		"GSI1SK": "EVENTPROJECT#{ID}",
	})
	register[Post](EntityPost, map[string]string{
		"PK":     "POST#{ID}",
		"SK":     "POST#{ID}",
		"GSI1PK": "ORG#{organization}",
		"GSI1SK": "POST#{ID}",
	})
}

func register[T any](entityType string, keys map[string]string) {
	registry.RegisterIndexMap[T](entityType, keys)
	registry.RegisterType(entityType, func(item map[string]types.AttributeValue) (interface{}, error) {
		v := new(T)
		if err := attributevalue.UnmarshalMap(item, v); err != nil {
			return nil, err
		}
		return v, nil
	})
}
