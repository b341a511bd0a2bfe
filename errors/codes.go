/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import "context"

// ErrorCode is a stable, machine-readable error identifier surfaced to API callers.
type ErrorCode string

const (
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeEventNotFound        ErrorCode = "EVENT_NOT_FOUND"
	CodeEventProjectNotFound ErrorCode = "EVENT_PROJECT_NOT_FOUND"
	CodeOrganizationNotFound ErrorCode = "ORGANIZATION_NOT_FOUND"
	CodePostNotFound         ErrorCode = "POST_NOT_FOUND"

	CodeInvalidInput    ErrorCode = "INVALID_INPUT"
	CodeSchemaFailed    ErrorCode = "SCHEMA_VALIDATION_FAILED"
	CodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"
	CodeConditionFailed ErrorCode = "CONDITION_FAILED"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// String returns the string representation of the ErrorCode.
func (c ErrorCode) String() string {
	return string(c)
}

// Translator resolves a message key to a localized string for the locale carried by ctx.
type Translator interface {
	Translate(ctx context.Context, key string) string
}

// Descriptor names a not-found condition: the message key handed to the translator, the code,
// and the default parameter reported when the caller does not name a field.
type Descriptor struct {
	Key   string
	Code  ErrorCode
	Param string
}

var (
	UserNotFound         = Descriptor{Key: "user.notFound", Code: CodeUserNotFound, Param: "user"}
	EventNotFound        = Descriptor{Key: "event.notFound", Code: CodeEventNotFound, Param: "event"}
	EventProjectNotFound = Descriptor{Key: "eventProject.notFound", Code: CodeEventProjectNotFound, Param: "eventProject"}
	OrganizationNotFound = Descriptor{Key: "organization.notFound", Code: CodeOrganizationNotFound, Param: "organization"}
	PostNotFound         = Descriptor{Key: "post.notFound", Code: CodePostNotFound, Param: "post"}
)

// NotFound builds the NotFoundError for d. The message is translated at construction time; an
// empty param falls back to d.Param.
func (d Descriptor) NotFound(ctx context.Context, tr Translator, param string) error {
	if param == "" {
		param = d.Param
	}
	msg := d.Key
	if tr != nil {
		msg = tr.Translate(ctx, d.Key)
	}
	return &NotFoundError{Message: msg, Code: d.Code, Param: param}
}
