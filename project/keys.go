// Package project implements the completion workflow for repeating project
// notes: detecting a status change to complete, confirming with the user,
// and advancing the note's schedule.
package project

import (
	"strings"

	"github.com/amonks/recur/internal/validation"
)

// DefaultNamespace prefixes every property key unless configured otherwise.
const DefaultNamespace = "project"

// Keys holds the resolved property names for one namespace.
type Keys struct {
	Status         string
	Repeating      string
	RepeatInterval string
	DueDate        string
	StartDate      string
}

// NewKeys resolves property names under namespace. An empty namespace falls
// back to DefaultNamespace.
func NewKeys(namespace string) Keys {
	namespace = strings.Trim(strings.TrimSpace(namespace), "/")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	prefix := namespace + "/"
	return Keys{
		Status:         prefix + "status",
		Repeating:      prefix + "repeating",
		RepeatInterval: prefix + "repeat-interval",
		DueDate:        prefix + "due-date",
		StartDate:      prefix + "start-date",
	}
}

// DefaultKeys returns the keys of the default namespace.
func DefaultKeys() Keys {
	return NewKeys(DefaultNamespace)
}

// Status is the lifecycle state of a project note.
type Status string

const (
	// StatusActive marks a project that is scheduled.
	StatusActive Status = "active"
	// StatusComplete marks a project the user has finished.
	StatusComplete Status = "complete"
)

// ValidStatuses returns the known statuses in display order.
func ValidStatuses() []Status {
	return []Status{StatusActive, StatusComplete}
}

// ParseStatus reads a status value, ignoring surrounding whitespace.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.TrimSpace(value))
	for _, valid := range ValidStatuses() {
		if status == valid {
			return status, nil
		}
	}
	return "", validation.FormatInvalidValueError(ErrInvalidStatus, Status(value), ValidStatuses())
}
