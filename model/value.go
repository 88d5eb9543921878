// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package model defines the record, query, and subscription shapes shared
// by every component of the cache.
package model

import (
	"encoding/json"
	"fmt"
)

// Value is the closed set of payload value shapes a record attribute may
// hold: string, number, boolean, or an ordered list of strings.
type Value struct {
	raw interface{}
}

// NewStringValue wraps a single string as a Value.
func NewStringValue(s string) Value { return Value{raw: s} }

// NewListValue wraps an ordered list of strings as a Value.
func NewListValue(list []string) Value { return Value{raw: append([]string{}, list...)} }

// NewNumberValue wraps a float64 as a Value.
func NewNumberValue(n float64) Value { return Value{raw: n} }

// NewBoolValue wraps a bool as a Value.
func NewBoolValue(b bool) Value { return Value{raw: b} }

// IsZero reports whether the Value was never assigned.
func (v Value) IsZero() bool { return v.raw == nil }

// Strings broadens the value into a set of strings: a scalar string becomes
// a singleton list, a list is returned as-is, and numbers/bools are
// formatted. This mirrors the clause-matching "broadening" rule in the
// query engine.
func (v Value) Strings() []string {
	switch t := v.raw.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case float64:
		return []string{formatNumber(t)}
	case bool:
		if t {
			return []string{"true"}
		}
		return []string{"false"}
	default:
		return nil
	}
}

// First returns the value's first (or only) string representation, and
// whether the value carried anything at all.
func (v Value) First() (string, bool) {
	s := v.Strings()
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// MarshalJSON emits the value in its most natural JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts a JSON string, number, bool, or array of strings.
// Anything else (objects, nested arrays) is rejected by the caller via
// ErrUnrepresentableValue — UnmarshalJSON itself stays permissive so
// validation errors surface as BAD_REQUEST at the API boundary rather than
// a JSON decode error.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string, float64, bool, nil:
		v.raw = t
	case []interface{}:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				v.raw = t
				return nil
			}
			list = append(list, s)
		}
		v.raw = list
	default:
		v.raw = t
	}
	return nil
}

// Representable reports whether the decoded value is one of the four
// supported shapes. A nested object or heterogeneous array fails this
// check and should be surfaced as BAD_REQUEST by the caller.
func (v Value) Representable() bool {
	switch v.raw.(type) {
	case nil, string, float64, bool, []string:
		return true
	default:
		return false
	}
}

// Raw returns the underlying decoded value, for callers that need to
// re-marshal it verbatim (e.g. copying opaque payload attributes).
func (v Value) Raw() interface{} { return v.raw }
