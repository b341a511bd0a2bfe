/*
Package datastore defines the persistence contract used by eventgraph models.

The main interface is DataStore[T], the backing store collaborator of every model:

	type DataStore[T any] interface {
	    FindOne(ctx context.Context, id models.ID) (*T, error)
	    Find(ctx context.Context, filter Filter) ([]T, error)
	    Insert(ctx context.Context, entity T) (*T, error)
	    FindOneAndUpdate(ctx context.Context, id models.ID, update Update) (*T, error)
	}

Stores own createdAt and updatedAt, and apply an Update (including its default
rules) as one single-document write, so concurrent writers never observe a
half-applied change and a cancelled call persists nothing.

Implementations:
  - memory: in-process store for tests and local development
  - mongostore: MongoDB collections via the official driver
  - ddb: DynamoDB single-table design with macro-based keys
*/
package datastore
