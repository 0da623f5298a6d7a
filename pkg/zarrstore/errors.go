package zarrstore

import (
	"github.com/nuclio/errors"
)

// InvalidKeyError reports a key that fails the Zarr-v3 key grammar (§7).
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return "invalid zarr key format `" + e.Key + "`"
}

// NotFound is implemented by every "object not found" error the Store
// returns, so Exists can recognize either without naming both concrete
// types (SPEC_FULL.md §7 expansion).
type NotFound interface {
	error
	IsNotFound() bool
}

// ChunkNotFoundError reports a missing chunk.
type ChunkNotFoundError struct {
	Key    string
	Path   string
	Coords []uint64
}

func (e *ChunkNotFoundError) Error() string {
	return "chunk cannot be found for key `" + e.Key + "`"
}

// IsNotFound implements NotFound.
func (e *ChunkNotFoundError) IsNotFound() bool { return true }

// NodeNotFoundError reports a missing node.
type NodeNotFoundError struct {
	Path string
}

func (e *NodeNotFoundError) Error() string {
	return "node not found at `" + e.Path + "`"
}

// IsNotFound implements NotFound.
func (e *NodeNotFoundError) IsNotFound() bool { return true }

// CannotUpdateError wraps an engine-level failure: a type mismatch between
// the requested operation and the node's kind, or an I/O failure surfaced
// by the engine.
type CannotUpdateError struct {
	wrapped error
	cause   error
}

func (e *CannotUpdateError) Error() string { return e.wrapped.Error() }
func (e *CannotUpdateError) Unwrap() error { return e.cause }

func newCannotUpdate(cause error) *CannotUpdateError {
	return &CannotUpdateError{wrapped: errors.Wrap(cause, "unsuccessful dataset operation"), cause: cause}
}

// BadMetadataError wraps a JSON parse failure, or a data-type-directed
// fill-value coercion failure.
type BadMetadataError struct {
	wrapped error
	cause   error
}

func (e *BadMetadataError) Error() string { return e.wrapped.Error() }
func (e *BadMetadataError) Unwrap() error { return e.cause }

func newBadMetadata(cause error) *BadMetadataError {
	return &BadMetadataError{wrapped: errors.Wrap(cause, "bad metadata"), cause: cause}
}

// UnimplementedError reports a store method this adapter declines to
// implement (set_partial_values, clear).
type UnimplementedError struct {
	Op string
}

func (e *UnimplementedError) Error() string {
	return "store method `" + e.Op + "` is not implemented by this adapter"
}

// BadKeyPrefixError reports a list_prefix/list_dir prefix missing its
// required trailing '/'.
type BadKeyPrefixError struct {
	Prefix string
}

func (e *BadKeyPrefixError) Error() string {
	return "bad key prefix: `" + e.Prefix + "`"
}

// UnknownError wraps a failure in task orchestration itself (not a
// per-key failure) during a batched read.
type UnknownError struct {
	wrapped error
	cause   error
}

func (e *UnknownError) Error() string { return e.wrapped.Error() }
func (e *UnknownError) Unwrap() error { return e.cause }

func newUnknown(cause error) *UnknownError {
	return &UnknownError{wrapped: errors.Wrap(cause, "unknown store error"), cause: cause}
}

// ErrAttributesNotInlined is returned when a node's user attributes are
// stored by reference; reading them out-of-line is unimplemented (§9 Open
// Questions, resolved in SPEC_FULL.md).
type ErrAttributesNotInlined struct {
	Path string
	Ref  string
}

func (e *ErrAttributesNotInlined) Error() string {
	return "user attributes for `" + e.Path + "` are stored by reference (`" + e.Ref + "`), which this adapter cannot read"
}
