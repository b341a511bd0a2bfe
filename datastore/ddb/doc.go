/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design patterns
  - Macro-based key expansion (e.g., "EVENTPROJECT#{ID}")
  - Global Secondary Index (GSI) queries for child-by-parent lookups
  - Conditional single-item updates with default rules applied in the same write
  - Automatic EntityType injection for polymorphic storage

Macro Expansion:
Keys use macros that are replaced with attribute values of the item:

	registry.RegisterIndexMap[models.EventProject](models.EntityEventProject, map[string]string{
	    "PK":     "EVENTPROJECT#{ID}",
	    "SK":     "EVENTPROJECT#{ID}",
	    "GSI1PK": "EVENT#{event}",     // children of one event share a partition
	    "GSI1SK": "EVENTPROJECT#{ID}",
	})

Default rules:
A datastore.Update carrying schema backfills is translated to if_not_exists
operands, e.g. "SET updatedBy = if_not_exists(updatedBy, createdBy)", so the
default is computed from the stored item rather than a stale read.

Integration tests run against a real table (or DynamoDB Local) with
`go test -tags integration ./datastore/ddb/...` and the AWS_* variables set.
*/
package ddb
