/*
Package schema declares entity fields and the policy applied before every write.

A schema lists required fields, enumerated domains and default rules. The policy
is a set of pure functions over a Document so it can be tested without a store:

	doc, err := s.Prepare(schema.Document{
	    "title": "Fall Gala", "description": "desc",
	    "event": eventID, "createdBy": userID,
	})
	// doc["status"] == "ACTIVE", doc["updatedBy"] == userID

Stores that update documents in place receive the same rules through Backfills()
and apply them inside their single-document write.
*/
package schema
