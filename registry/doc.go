/*
Package registry holds the process-wide tables of eventgraph.

Model Registry:
Each entity name has at most one live binding per process. GetOrCreate is
idempotent: a second call (a test re-running package setup, two goroutines
racing at startup) returns the binding built by the first call and never
reports a duplicate registration.

	m, err := registry.GetOrCreateModel(registry.Default(), "EventProject", func() (*Model, error) {
	    return newModel(schema, store), nil
	})

Type Registry:
Maps entity type names to unmarshal functions for polymorphic DynamoDB reads:

	registry.RegisterType("User", func(item map[string]types.AttributeValue) (interface{}, error) {
	    var u User
	    err := attributevalue.UnmarshalMap(item, &u)
	    return &u, err
	})

Index Map Registry:
Associates Go types with DynamoDB key templates:

	registry.RegisterIndexMap[EventProject]("EventProject", map[string]string{
	    "PK":     "EVENTPROJECT#{ID}",
	    "SK":     "EVENTPROJECT#{ID}",
	    "GSI1PK": "EVENT#{Event}",
	    "GSI1SK": "EVENTPROJECT#{ID}",
	})

All registries are safe for concurrent use and tolerate repeated registration.
*/
package registry
