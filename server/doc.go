/*
Package server exposes the resolvers over HTTP with gin.

Every response uses one envelope:

	{"success": true, "data": {...}}
	{"success": false, "error": {"message": "Post not found", "code": "POST_NOT_FOUND", "param": "id"}}

Messages are translated for the request's Accept-Language. Reads are public; mutations and the
transaction log need an HS256 bearer token whose subject is the viewer's user id.
*/
package server
