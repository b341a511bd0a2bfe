/*
Package errors provides semantic error types for eventgraph.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrAlreadyExists   = errors.New("entity already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoIndexMap      = errors.New("no index map found for type")
	)

Not-found failures carry exactly three fields: a localized Message, a stable Code
and the Param naming the field that failed to resolve:

	err := errors.UserNotFound.NotFound(ctx, translator, "updatedBy")
	var nf *errors.NotFoundError
	if stderrors.As(err, &nf) {
	    // nf.Code == "USER_NOT_FOUND", nf.Param == "updatedBy"
	}

Validation failures reject a write before it is committed:

	err := errors.NewSchemaError("status", `value "ARCHIVED" is not one of [ACTIVE BLOCKED DELETED]`)
	errors.IsValidationError(err) // true

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
