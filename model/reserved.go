// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// Reserved wire keys. Anything outside this set is opaque payload and
// passed through untouched.
const (
	KeyURI        = "record-uri"
	KeyTTL        = "record-ttl"
	KeyExpires    = "record-expires"
	KeyType       = "record-type"
	KeyState      = "record-state"
	KeyOperator   = "record-operator"
	KeySkip       = "record-skip"
	KeyMaxResults = "record-max-results"
	KeyClientUUID = "client-uuid"

	// attrType is the unprefixed payload key ("type") many callers use to
	// carry a record's type. Registration accepts either this or KeyType;
	// responses echo back both.
	attrType = "type"
)

// State is the lifecycle state of a record.
type State string

// Lifecycle states a record passes through.
const (
	StateRegister State = "REGISTER"
	StateRenew    State = "RENEW"
	StateDelete   State = "DELETE"
	StateExpired  State = "EXPIRED"
)
