// Package engine declares the interfaces the Store Facade uses to talk to
// the dataset engine and its backing object storage. Both are external
// collaborators (spec.md §1): this package only describes the shape the
// adapter depends on, never an implementation. Production implementations
// (node CRUD, chunk inlining/externalization, commit/flush, the in-memory /
// local-filesystem / cached storage backends) live outside this module; a
// test-only in-memory implementation lives in pkg/enginetest.
package engine

import (
	"context"
	"encoding/json"
)

// NodeKind discriminates a node's data: a node is either a group or an
// array, never both (spec.md §3 invariant).
type NodeKind int

const (
	NodeKindGroup NodeKind = iota
	NodeKindArray
)

// ManifestRef is an engine-assigned content identifier for an array's chunk
// manifest. The adapter never interprets it; it only passes it through.
type ManifestRef string

// UserAttributesRef marks that a node's user attributes are stored by
// reference rather than inlined. Reading such a node's attributes is
// unsupported (spec.md §7, §9 Open Questions).
type UserAttributesRef string

// UserAttributes is either inlined JSON or a reference the adapter cannot
// resolve on read. Exactly one of Inline/Ref is set; both unset means "no
// attributes".
type UserAttributes struct {
	Inline json.RawMessage
	Ref    UserAttributesRef
}

// IsRef reports whether the attributes are stored out of line.
func (a UserAttributes) IsRef() bool {
	return a.Ref != ""
}

// IsEmpty reports whether the node carries no attributes at all.
func (a UserAttributes) IsEmpty() bool {
	return len(a.Inline) == 0 && a.Ref == ""
}

// ArrayMetadata mirrors metadata.ArrayMetadata but is the engine's
// representation of it (the two packages intentionally do not share a type:
// the engine's struct is the source of truth for the dataset, the metadata
// package's struct is the wire-facing shape the Store Facade bridges to and
// from).
type ArrayMetadata struct {
	Shape               []uint64
	DataType            string
	ChunkShape          []uint64
	FillValueJSON       json.RawMessage
	Codecs              []CodecDescriptor
	StorageTransformers []CodecDescriptor
	DimensionNames      []*string
}

// CodecDescriptor is a {name, opaque configuration} pair; the engine is as
// agnostic to codec semantics as the adapter is.
type CodecDescriptor struct {
	Name          string
	Configuration json.RawMessage
}

// Node is a single vertex in the dataset's node graph.
type Node struct {
	Path           string
	Kind           NodeKind
	UserAttributes UserAttributes
	ArrayMetadata  *ArrayMetadata // non-nil iff Kind == NodeKindArray
	Manifest       ManifestRef    // set iff Kind == NodeKindArray
}

// ChunkLocation is one materialized chunk of an array node, keyed by its
// coordinate tuple.
type ChunkLocation struct {
	Path   string
	Coords []uint64
}

// NodeIterator pulls nodes from the dataset's node listing one at a time,
// the Go-idiomatic analogue of the engine's async node stream (SPEC_FULL.md
// §3 expansion).
type NodeIterator interface {
	// Next advances the iterator. ok is false once the iterator is
	// exhausted; err is non-nil only on an engine-level failure.
	Next(ctx context.Context) (node Node, ok bool, err error)
}

// ChunkIterator pulls (path, coords) pairs from the dataset's all-chunks
// listing one at a time.
type ChunkIterator interface {
	Next(ctx context.Context) (loc ChunkLocation, ok bool, err error)
}

// Engine is the dataset engine collaborator the Store Facade is built
// against. Every method is a potential suspension point (SPEC_FULL.md §5).
// Read operations are safe for concurrent use; Engine implementations
// serialize their own writes, so the adapter adds no locking of its own
// (spec.md §5).
type Engine interface {
	// GetNode looks up a single node by path. It returns a non-nil error
	// when the node is absent; the Store Facade treats any GetNode error as
	// "no node at path" and reports its own NodeNotFoundError.
	GetNode(ctx context.Context, path string) (Node, error)

	// AddGroup / AddArray create a new node. They fail if a node already
	// exists at path.
	AddGroup(ctx context.Context, path string) error
	AddArray(ctx context.Context, path string, meta ArrayMetadata) error

	// UpdateArray replaces an existing array node's Zarr metadata. It fails
	// (CannotUpdate) if the node is absent or is a group.
	UpdateArray(ctx context.Context, path string, meta ArrayMetadata) error

	// SetUserAttributes replaces a node's user attributes wholesale.
	SetUserAttributes(ctx context.Context, path string, attrs UserAttributes) error

	// DeleteGroup / DeleteArray remove an existing node. Deleting an absent
	// node is an error (spec.md §3 invariant); the Store Facade is
	// responsible for the GetNode-then-delete ordering that produces
	// NodeNotFound instead of an engine-defined error in that case.
	DeleteGroup(ctx context.Context, path string) error
	DeleteArray(ctx context.Context, path string) error

	// GetChunk fetches one chunk's bytes. It returns ok=false (not an
	// error) when the chunk is absent, letting the Store Facade attach key
	// context to the ChunkNotFoundError it constructs.
	GetChunk(ctx context.Context, path string, coords []uint64) (data []byte, ok bool, err error)

	// SetChunk writes (or overwrites) one chunk's bytes. The engine decides
	// between inlining and externalizing based on its own configured
	// threshold (spec.md §4.3 "Set dispatch on chunk").
	SetChunk(ctx context.Context, path string, coords []uint64, data []byte) error

	// SetChunkRef clears a chunk reference. It always succeeds, even for a
	// chunk that was never set (spec.md §3 "Deletion of a chunk is
	// idempotent").
	SetChunkRef(ctx context.Context, path string, coords []uint64) error

	// ListNodes returns a fresh iterator over every node in the dataset.
	ListNodes(ctx context.Context) (NodeIterator, error)

	// AllChunks returns a fresh iterator over every materialized chunk
	// location in the dataset.
	AllChunks(ctx context.Context) (ChunkIterator, error)
}
