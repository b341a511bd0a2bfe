/*
Package eventgraph is the storage core of an event and organization management backend:
declared entity schemas are bound to document stores once per process, every write goes
through a default-field policy, and reads of references fail with localized structured errors.

The library follows a declare → bind → use workflow:
  - Declare: entity schemas in YAML (models/schemas.yaml), key templates for DynamoDB
  - Bind: Bind[T] registers a Model under its entity name in a registry.Registry
  - Use: Create, Update, SoftDelete and lookups through the model

Key Features:
  - Idempotent, race-safe model registration
  - Default rules (updatedBy from createdBy, status ACTIVE) applied in the same write as the
    change, on every backend
  - Memory, MongoDB and DynamoDB stores behind one generic DataStore[T]
  - NotFound errors carrying a translated message, a code and the offending field

Basic Usage:

	reg := registry.Default()
	m, err := eventgraph.BindModels(reg, eventgraph.MemoryStores(), logger)

	project, err := m.EventProjects.Create(ctx, models.EventProject{
	    Title:       "Stage crew",
	    Description: "Build and strike",
	    Event:       eventID,
	    CreatedBy:   viewerID,
	})
	// project.Status == models.StatusActive, project.UpdatedBy == viewerID
*/
package eventgraph
