/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UnmarshalFunc defines a function that takes a raw DynamoDB item and returns the unmarshaled object.
type UnmarshalFunc func(item map[string]types.AttributeValue) (interface{}, error)

var (
	typeRegistry = make(map[string]UnmarshalFunc)
	typeMu       sync.RWMutex
)

// RegisterType registers an unmarshal function for an entity type name (the EntityType attribute).
// The first registration wins; registering the same name again is a no-op, so package init code
// may run more than once in a test binary.
func RegisterType(entityType string, fn UnmarshalFunc) {
	typeMu.Lock()
	defer typeMu.Unlock()
	if _, exists := typeRegistry[entityType]; exists {
		return
	}
	typeRegistry[entityType] = fn
}

// GetUnmarshalFunc returns the registered unmarshal function for the given entity type.
// If no function is registered, it returns an error.
func GetUnmarshalFunc(entityType string) (UnmarshalFunc, error) {
	typeMu.RLock()
	defer typeMu.RUnlock()
	fn, ok := typeRegistry[entityType]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", entityType)
	}
	return fn, nil
}
