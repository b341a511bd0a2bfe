/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import "fmt"

// Status is the lifecycle state shared by projects, events, organizations and posts.
// Deletion is soft: a deleted record keeps existing with StatusDeleted.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
	StatusDeleted Status = "DELETED"
)

// Statuses lists the domain in declaration order.
var Statuses = []Status{StatusActive, StatusBlocked, StatusDeleted}

// ParseStatus converts s into a Status, rejecting anything outside the domain.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusBlocked, StatusDeleted:
		return true
	}
	return false
}

// IsVisible reports whether records in this state are returned to regular readers.
func (s Status) IsVisible() bool {
	switch s {
	case StatusActive:
		return true
	case StatusBlocked, StatusDeleted:
		return false
	}
	return false
}

// CanTransitionTo reports whether a record may move from s to next. DELETED is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case StatusActive, StatusBlocked:
		return true
	case StatusDeleted:
		return next == StatusDeleted
	}
	return false
}
