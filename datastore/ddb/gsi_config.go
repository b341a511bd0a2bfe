/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

// GSIConfig holds the configuration for GSI key mappings
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the partition key attribute of the GSI, also the index map key holding
	// its template
	PartitionKeyName string
	// SortKeyName is the sort key attribute of the GSI
	SortKeyName string
}

// DefaultGSIConfig is the index every entity with a parent reference is written to.
var DefaultGSIConfig = GSIConfig{
	IndexName:        "GSI1",
	PartitionKeyName: "GSI1PK",
	SortKeyName:      "GSI1SK",
}
