// Package zarrstore implements the Store Facade: the get/set/delete/list
// operations Zarr-v3 clients expect, dispatched over the Key Codec and
// Metadata Bridge onto a caller-supplied dataset engine (spec.md §4.3).
package zarrstore

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"golang.org/x/sync/errgroup"

	"github.com/polarstore/zarrstore/pkg/engine"
	"github.com/polarstore/zarrstore/pkg/keycodec"
	"github.com/polarstore/zarrstore/pkg/metadata"
)

// ByteRange is accepted for ABI compatibility only; the current contract
// always returns the full value regardless of its contents (spec.md §4.3,
// §9 Open Questions).
type ByteRange struct {
	Start *int64
	End   *int64
}

// Option configures a Store beyond the operations spec.md fixes.
type Option func(*Store)

// WithChunkArityValidation makes set/delete on a chunk key consult the
// node's array metadata first and reject coordinate tuples whose length
// does not match the array's dimensionality. Off by default, matching
// spec.md's stated current behavior that the codec does not enforce arity
// (§9 Open Questions, resolved in SPEC_FULL.md).
func WithChunkArityValidation(enabled bool) Option {
	return func(s *Store) { s.validateChunkArity = enabled }
}

// Store is a stateless façade over a mutable dataset engine handle. It owns
// no persistent state of its own (spec.md §6.4); all durability is
// delegated to eng.
type Store struct {
	eng                engine.Engine
	log                logger.Logger
	validateChunkArity bool
}

// New builds a Store over eng, logging through log. Mirrors the teacher's
// NewContext(parentLogger, input) constructor shape: a required logger, a
// required collaborator, options for the rest.
func New(eng engine.Engine, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		eng: eng,
		log: log.GetChild("zarrstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Empty reports whether the dataset has no nodes at all.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	it, err := s.eng.ListNodes(ctx)
	if err != nil {
		return false, newCannotUpdate(err)
	}
	_, ok, err := it.Next(ctx)
	if err != nil {
		return false, newCannotUpdate(err)
	}
	return !ok, nil
}

// Get resolves key to its bytes. byteRange is accepted but ignored.
func (s *Store) Get(ctx context.Context, key string, byteRange ByteRange) ([]byte, error) {
	k, err := keycodec.Parse(key)
	if err != nil {
		return nil, &InvalidKeyError{Key: key}
	}

	switch k.Kind {
	case keycodec.KindMetadata:
		return s.getMetadata(ctx, key, k.NodePath)
	case keycodec.KindChunk:
		return s.getChunk(ctx, key, k.NodePath, k.Coords)
	default:
		return nil, &InvalidKeyError{Key: key}
	}
}

func (s *Store) getMetadata(ctx context.Context, key, path string) ([]byte, error) {
	node, err := s.eng.GetNode(ctx, path)
	if err != nil {
		s.log.DebugWith("node not found", "path", path, "err", err)
		return nil, &NodeNotFoundError{Path: path}
	}

	attrs, err := inlineAttributes(path, node.UserAttributes)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case engine.NodeKindGroup:
		return metadata.SerializeGroup(metadata.GroupMetadata{Attributes: attrs}), nil
	case engine.NodeKindArray:
		zarrMeta, err := engineArrayMetaToWire(*node.ArrayMetadata)
		if err != nil {
			return nil, newBadMetadata(err)
		}
		zarrMeta.Attributes = attrs
		return metadata.SerializeArray(zarrMeta), nil
	default:
		return nil, errors.Errorf("bug: unknown node kind for %q", path)
	}
}

func inlineAttributes(path string, attrs engine.UserAttributes) (metadata.UserAttributes, error) {
	if attrs.IsRef() {
		return nil, &ErrAttributesNotInlined{Path: path, Ref: string(attrs.Ref)}
	}
	if attrs.IsEmpty() {
		return nil, nil
	}
	return metadata.UserAttributes(attrs.Inline), nil
}

func (s *Store) getChunk(ctx context.Context, key, path string, coords []uint64) ([]byte, error) {
	data, ok, err := s.eng.GetChunk(ctx, path, coords)
	if err != nil {
		return nil, newCannotUpdate(err)
	}
	if !ok {
		return nil, &ChunkNotFoundError{Key: key, Path: path, Coords: coords}
	}
	return data, nil
}

// PartialValueRequest is one (key, range) pair in a get_partial_values call.
type PartialValueRequest struct {
	Key   string
	Range ByteRange
}

// PartialValueResult is the per-key outcome of a get_partial_values call.
type PartialValueResult struct {
	Data []byte
	Err  error
}

// GetPartialValues resolves every request concurrently, one goroutine per
// request via errgroup, and returns results in input order (spec.md §5).
// Per-key failures are captured in-band in each result's Err; the call
// itself only fails if orchestration fails (it cannot, in this design —
// goroutines are always spawnable — but the signature keeps that contract
// explicit for callers mirroring the spec).
func (s *Store) GetPartialValues(ctx context.Context, requests []PartialValueRequest) ([]PartialValueResult, error) {
	results := make([]PartialValueResult, len(requests))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		group.Go(func() error {
			data, err := s.Get(groupCtx, req.Key, req.Range)
			results[i] = PartialValueResult{Data: data, Err: err}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, newUnknown(err)
	}

	return results, nil
}

// Exists reports whether key resolves to a value. Implemented via Get:
// NotFound maps to false; any other error propagates (spec.md §4.3, §8).
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key, ByteRange{})
	if err == nil {
		return true, nil
	}
	var nf NotFound
	if stderrors.As(err, &nf) {
		return false, nil
	}
	return false, err
}

// Set writes value at key. Metadata keys are sniff-dispatched between array
// and group; chunk keys forward to the engine (spec.md §4.3).
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	k, err := keycodec.Parse(key)
	if err != nil {
		return &InvalidKeyError{Key: key}
	}

	switch k.Kind {
	case keycodec.KindMetadata:
		return s.setMetadata(ctx, k.NodePath, value)
	case keycodec.KindChunk:
		if s.validateChunkArity {
			if err := s.checkChunkArity(ctx, k.NodePath, k.Coords); err != nil {
				return err
			}
		}
		if err := s.eng.SetChunk(ctx, k.NodePath, k.Coords, value); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	default:
		return &InvalidKeyError{Key: key}
	}
}

func (s *Store) setMetadata(ctx context.Context, path string, value []byte) error {
	array, group, err := metadata.Sniff(value)
	if err != nil {
		return newBadMetadata(err)
	}

	if array != nil {
		return s.setArrayMeta(ctx, path, *array)
	}
	return s.setGroupMeta(ctx, path, *group)
}

func (s *Store) setArrayMeta(ctx context.Context, path string, m metadata.ArrayMetadata) error {
	engineMeta := wireArrayMetaToEngine(m)
	attrs := wireAttributesToEngine(m.Attributes)

	if node, err := s.eng.GetNode(ctx, path); err == nil {
		if node.Kind != engine.NodeKindArray {
			return newCannotUpdate(errors.Errorf("node %q is a group, cannot set array metadata on it", path))
		}
		if err := s.eng.UpdateArray(ctx, path, engineMeta); err != nil {
			return newCannotUpdate(err)
		}
		if err := s.eng.SetUserAttributes(ctx, path, attrs); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	}

	if err := s.eng.AddArray(ctx, path, engineMeta); err != nil {
		return newCannotUpdate(err)
	}
	if err := s.eng.SetUserAttributes(ctx, path, attrs); err != nil {
		return newCannotUpdate(err)
	}
	return nil
}

func (s *Store) setGroupMeta(ctx context.Context, path string, m metadata.GroupMetadata) error {
	attrs := wireAttributesToEngine(m.Attributes)

	if node, err := s.eng.GetNode(ctx, path); err == nil {
		if node.Kind != engine.NodeKindGroup {
			return newCannotUpdate(errors.Errorf("node %q is an array, cannot set group metadata on it", path))
		}
		if err := s.eng.SetUserAttributes(ctx, path, attrs); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	}

	if err := s.eng.AddGroup(ctx, path); err != nil {
		return newCannotUpdate(err)
	}
	if err := s.eng.SetUserAttributes(ctx, path, attrs); err != nil {
		return newCannotUpdate(err)
	}
	return nil
}

func (s *Store) checkChunkArity(ctx context.Context, path string, coords []uint64) error {
	node, err := s.eng.GetNode(ctx, path)
	if err != nil || node.ArrayMetadata == nil {
		// Let the engine reject on the actual set/delete call; arity
		// validation is a best-effort tightening, not a new not-found path.
		return nil
	}
	if len(coords) != len(node.ArrayMetadata.Shape) {
		return newCannotUpdate(errors.Errorf(
			"chunk coords %v have arity %d, array %q has dimensionality %d",
			coords, len(coords), path, len(node.ArrayMetadata.Shape)))
	}
	return nil
}

// SetPartialValues always fails; partial writes are a declared Non-goal
// (spec.md §1, §4.3).
func (s *Store) SetPartialValues(ctx context.Context) error {
	return &UnimplementedError{Op: "set_partial_values"}
}

// Clear is unimplemented; its semantics (tombstone vs. reset to empty
// commit) are undecided (spec.md §9 Open Questions).
func (s *Store) Clear(ctx context.Context) error {
	return &UnimplementedError{Op: "clear"}
}

// Delete removes key. Metadata: the node is looked up first (NodeNotFound
// if absent), then its discriminant selects delete_array vs delete_group.
// Chunk: always succeeds, even for a chunk that never existed (spec.md §3,
// §4.3, §8).
func (s *Store) Delete(ctx context.Context, key string) error {
	k, err := keycodec.Parse(key)
	if err != nil {
		return &InvalidKeyError{Key: key}
	}

	switch k.Kind {
	case keycodec.KindMetadata:
		return s.deleteMetadata(ctx, k.NodePath)
	case keycodec.KindChunk:
		if s.validateChunkArity {
			if err := s.checkChunkArity(ctx, k.NodePath, k.Coords); err != nil {
				return err
			}
		}
		if err := s.eng.SetChunkRef(ctx, k.NodePath, k.Coords); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	default:
		return &InvalidKeyError{Key: key}
	}
}

func (s *Store) deleteMetadata(ctx context.Context, path string) error {
	node, err := s.eng.GetNode(ctx, path)
	if err != nil {
		return &NodeNotFoundError{Path: path}
	}

	switch node.Kind {
	case engine.NodeKindArray:
		if err := s.eng.DeleteArray(ctx, path); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	case engine.NodeKindGroup:
		if err := s.eng.DeleteGroup(ctx, path); err != nil {
			return newCannotUpdate(err)
		}
		return nil
	default:
		return errors.Errorf("bug: unknown node kind for %q", path)
	}
}

// List is equivalent to ListPrefix("/") (spec.md §4.3, §8).
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.ListPrefix(ctx, "/")
}

// ListPrefix concatenates the metadata-key stream and the chunk-key stream,
// both filtered by prefix, with metadata keys always emitted first (spec.md
// §4.3, §5).
func (s *Store) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	if !strings.HasSuffix(prefix, "/") {
		return nil, &BadKeyPrefixError{Prefix: prefix}
	}

	metaKeys, err := s.listMetadataPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	chunkKeys, err := s.listChunksPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	return append(metaKeys, chunkKeys...), nil
}

func (s *Store) listMetadataPrefix(ctx context.Context, prefix string) ([]string, error) {
	trimmed := strings.TrimSuffix(prefix, "/")

	it, err := s.eng.ListNodes(ctx)
	if err != nil {
		return nil, newCannotUpdate(err)
	}

	var keys []string
	for {
		node, ok, err := it.Next(ctx)
		if err != nil {
			return nil, newCannotUpdate(err)
		}
		if !ok {
			break
		}
		key, formatOK := keycodec.Format(keycodec.Metadata(node.Path))
		if !formatOK {
			continue
		}
		if strings.HasPrefix(key, trimmed) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Store) listChunksPrefix(ctx context.Context, prefix string) ([]string, error) {
	trimmed := strings.TrimSuffix(prefix, "/")

	it, err := s.eng.AllChunks(ctx)
	if err != nil {
		return nil, newCannotUpdate(err)
	}

	var keys []string
	for {
		loc, ok, err := it.Next(ctx)
		if err != nil {
			return nil, newCannotUpdate(err)
		}
		if !ok {
			break
		}
		key, formatOK := keycodec.Format(keycodec.Chunk(loc.Path, loc.Coords))
		if !formatOK {
			continue
		}
		if strings.HasPrefix(key, trimmed) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ListDir yields the distinct set of immediate-child names directly under
// prefix, derived from ListPrefix by taking each result's first path
// segment after the prefix (spec.md §4.3, §8).
func (s *Store) ListDir(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	idx := 0
	if prefix != "/" {
		idx = len(prefix)
	}

	seen := make(map[string]struct{}, len(keys))
	var children []string
	for _, key := range keys {
		rest := key[idx:]
		child := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			child = rest[:i]
		}
		if _, dup := seen[child]; dup {
			continue
		}
		seen[child] = struct{}{}
		children = append(children, child)
	}
	return children, nil
}
