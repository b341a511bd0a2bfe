/*
Package processor checks entity schema declarations against each other and against the
DynamoDB index maps registered for the Go types.

A schema file is the YAML read by schema.Parse:

	schemas:
	  - name: EventProject
	    timestamps: true
	    fields:
	      - {name: event, kind: objectId, ref: Event, required: true}
	      - {name: updatedBy, kind: objectId, ref: User, defaultFrom: createdBy}

Check reports references to undeclared entities, schemas without an index map, and key
templates whose macros name no field:

	problems := processor.Check(schemas, registry.IndexMaps())

Main is the entry point of cmd/schemacheck. With no file arguments it checks the schemas
embedded in the models package.
*/
package processor
