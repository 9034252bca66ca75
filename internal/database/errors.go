package database

import "errors"

var (
	// ErrContentNotFound is returned when a content item does not exist.
	ErrContentNotFound = errors.New("content not found")
	// ErrCredentialNotFound is returned when the owner has no active bot credential.
	ErrCredentialNotFound = errors.New("no active bot credential")
	// ErrSnapshotNotFound is returned when no current metrics snapshot exists.
	ErrSnapshotNotFound = errors.New("metrics snapshot not found")
	// ErrSnapshotConflict is returned when a snapshot changed between read and write.
	ErrSnapshotConflict = errors.New("metrics snapshot was modified concurrently")
)
