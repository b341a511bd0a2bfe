/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sort"
	"sync"
)

// IndexMapRegistry associates Go entity types with their DynamoDB key templates.

var (
	indexMapRegistry = make(map[reflect.Type]IndexMap)
	mu               sync.RWMutex
)

// IndexMap maps key attribute names (PK, SK, GSI1PK, ...) to templates such as "EVENTPROJECT#{ID}".
// EntityType is stored next to the keys so that polymorphic queries can pick an unmarshal function.
type IndexMap struct {
	EntityType string
	Keys       map[string]string
}

// RegisterIndexMap associates a Go type T with an index map. The first registration wins.
func RegisterIndexMap[T any](entityType string, keys map[string]string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	if _, exists := indexMapRegistry[t]; exists {
		return
	}
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	indexMapRegistry[t] = IndexMap{EntityType: entityType, Keys: copied}
}

// GetIndexMap retrieves the index map for type T, if any.
func GetIndexMap[T any]() (IndexMap, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[t]
	return m, ok
}

// IndexMaps returns every registered index map, ordered by entity type.
func IndexMaps() []IndexMap {
	mu.RLock()
	out := make([]IndexMap, 0, len(indexMapRegistry))
	for _, m := range indexMapRegistry {
		out = append(out, m)
	}
	mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EntityType < out[j].EntityType })
	return out
}
