// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// Operator values a query's "operator" control may take.
const (
	OperatorAll = "all"
	OperatorAny = "any"
)

// Query is a parsed query document: the reserved controls pulled out, and
// the remaining payload kept as match clauses. The query engine turns this
// into a store.Matcher.
type Query struct {
	Operator   string
	Skip       int
	MaxResults int
	Clauses    map[string]Value
}
