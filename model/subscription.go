// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// SubscriptionSpec is the immutable part of a subscription: the saved
// query and delivery endpoint supplied at subscribe time.
type SubscriptionSpec struct {
	ID             string
	Query          Query
	Endpoint       string
	MaxPushEvents  int
	TimeInterval   time.Duration
	AuthHeaderName string
	AuthHeaderVal  string
}
