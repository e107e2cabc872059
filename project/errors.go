package project

import "errors"

var (
	// ErrNoActiveDocument indicates that no note is active in the workspace.
	ErrNoActiveDocument = errors.New("no active document")
	// ErrNotFound indicates the note to update does not exist.
	ErrNotFound = errors.New("unable to find file to update")
	// ErrNoFrontmatter indicates the note has no frontmatter block.
	ErrNoFrontmatter = errors.New("no frontmatter found")
	// ErrInvalidStatus indicates a status value outside the known set.
	ErrInvalidStatus = errors.New("invalid status")
)
