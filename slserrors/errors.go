// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package slserrors defines the error taxonomy surfaced to clients. Each
// kind implements error plus StatusCode() int so the transport layer's
// encodeError can pick the right HTTP status using go-kit's
// kithttp.StatusCoder convention, without a central switch statement.
package slserrors

import "net/http"

// BadRequest: malformed JSON, unknown operator, non-integer skip/limit.
type BadRequest struct{ Message string }

func (e BadRequest) Error() string   { return e.Message }
func (e BadRequest) StatusCode() int { return http.StatusBadRequest }

// Forbidden: auth token mismatch, or lease denial on renew.
type Forbidden struct{ Message string }

func (e Forbidden) Error() string   { return e.Message }
func (e Forbidden) StatusCode() int { return http.StatusForbidden }

// NotFound: unknown URI on get/renew/delete.
type NotFound struct{ Message string }

func (e NotFound) Error() string   { return e.Message }
func (e NotFound) StatusCode() int { return http.StatusNotFound }

// NotSupported: write to a read-only namespace (e.g. archive).
type NotSupported struct{ Message string }

func (e NotSupported) Error() string   { return e.Message }
func (e NotSupported) StatusCode() int { return http.StatusMethodNotAllowed }

// Internal: store failure, or a format exception surviving past
// validation.
type Internal struct{ Message string }

func (e Internal) Error() string   { return e.Message }
func (e Internal) StatusCode() int { return http.StatusInternalServerError }

// Unavailable: lease capacity exhausted.
type Unavailable struct{ Message string }

func (e Unavailable) Error() string   { return e.Message }
func (e Unavailable) StatusCode() int { return http.StatusServiceUnavailable }
