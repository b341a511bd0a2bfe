/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suparena/eventgraph/errors"
)

// Body is the API response envelope.
type Body struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a localized message with its stable code and the offending parameter.
type ErrorBody struct {
	Message string           `json:"message"`
	Code    errors.ErrorCode `json:"code"`
	Param   string           `json:"param,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Fail sends err in the envelope with a status derived from its kind and aborts the chain.
func Fail(c *gin.Context, err error) {
	status, body := describe(err)
	c.AbortWithStatusJSON(status, Body{Success: false, Error: body})
}

// Abort sends an error that did not come from the domain layer.
func Abort(c *gin.Context, status int, code errors.ErrorCode, message, param string) {
	c.AbortWithStatusJSON(status, Body{Success: false, Error: &ErrorBody{Message: message, Code: code, Param: param}})
}

func describe(err error) (int, *ErrorBody) {
	var nf *errors.NotFoundError
	if stderrors.As(err, &nf) {
		return http.StatusNotFound, &ErrorBody{Message: nf.Message, Code: nf.Code, Param: nf.Param}
	}
	var ve *errors.ValidationError
	if stderrors.As(err, &ve) {
		return http.StatusBadRequest, &ErrorBody{Message: ve.Error(), Code: ve.Code, Param: ve.Field}
	}
	switch code := errors.CodeOf(err); code {
	case errors.CodeAlreadyExists, errors.CodeConditionFailed:
		return http.StatusConflict, &ErrorBody{Message: err.Error(), Code: code}
	case errors.CodeNotFound:
		return http.StatusNotFound, &ErrorBody{Message: err.Error(), Code: code}
	}
	return http.StatusInternalServerError, &ErrorBody{Message: "internal error", Code: errors.CodeInternal}
}
