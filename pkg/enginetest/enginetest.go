// Package enginetest provides a map-backed, single-process fake of
// engine.Engine for exercising pkg/zarrstore without a real dataset engine
// or object storage. It is not a production implementation: no
// concurrency control beyond a single mutex, no persistence, no manifests.
package enginetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nuclio/errors"

	"github.com/polarstore/zarrstore/pkg/engine"
)

// errNodeNotFound is returned by GetNode for an absent path. It carries no
// exported type because the Store Facade never inspects engine errors
// directly — it always substitutes its own NodeNotFoundError — so the fake
// only needs any distinguishable, non-nil error here.
var errNodeNotFound = errors.New("enginetest: node not found")

// Engine is an in-memory engine.Engine. Chunks below InlineChunkThreshold
// bytes are stored inline alongside the node (and never appear in
// ChunkIdentifiers); chunks at or above the threshold are "externalized"
// into a separate identifier-addressed store, simulating the inline-vs-
// external storage split described in spec.md §6.3 scenario 4. A zero
// threshold externalizes everything.
type Engine struct {
	InlineChunkThreshold int

	mu       sync.Mutex
	nodes    map[string]*engine.Node
	inline   map[chunkKey][]byte
	external map[string][]byte // identifier -> bytes
	extRef   map[chunkKey]string
	nextID   int
}

type chunkKey struct {
	path   string
	coords string
}

func newChunkKey(path string, coords []uint64) chunkKey {
	return chunkKey{path: path, coords: coordsString(coords)}
}

func coordsString(coords []uint64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.FormatUint(c, 10)
	}
	return strings.Join(parts, ",")
}

// New builds an empty Engine with no nodes at all, not even the root group,
// so that a fresh store reports "/" as missing (spec.md scenario 1). Callers
// that want a root group call AddGroup(ctx, "/") themselves.
func New() *Engine {
	return &Engine{
		nodes:    make(map[string]*engine.Node),
		inline:   make(map[chunkKey][]byte),
		external: make(map[string][]byte),
		extRef:   make(map[chunkKey]string),
	}
}

// GetNode implements engine.Engine.
func (e *Engine) GetNode(ctx context.Context, path string) (engine.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.nodes[path]
	if !ok {
		return engine.Node{}, errNodeNotFound
	}
	return *node, nil
}

// AddGroup implements engine.Engine.
func (e *Engine) AddGroup(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[path]; exists {
		return errors.Errorf("enginetest: node already exists at %q", path)
	}
	e.nodes[path] = &engine.Node{Path: path, Kind: engine.NodeKindGroup}
	return nil
}

// AddArray implements engine.Engine.
func (e *Engine) AddArray(ctx context.Context, path string, meta engine.ArrayMetadata) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[path]; exists {
		return errors.Errorf("enginetest: node already exists at %q", path)
	}
	m := meta
	e.nodes[path] = &engine.Node{Path: path, Kind: engine.NodeKindArray, ArrayMetadata: &m}
	return nil
}

// UpdateArray implements engine.Engine.
func (e *Engine) UpdateArray(ctx context.Context, path string, meta engine.ArrayMetadata) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.nodes[path]
	if !ok {
		return errors.Errorf("enginetest: no node at %q", path)
	}
	if node.Kind != engine.NodeKindArray {
		return errors.Errorf("enginetest: node at %q is not an array", path)
	}
	m := meta
	node.ArrayMetadata = &m
	return nil
}

// SetUserAttributes implements engine.Engine.
func (e *Engine) SetUserAttributes(ctx context.Context, path string, attrs engine.UserAttributes) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.nodes[path]
	if !ok {
		return errors.Errorf("enginetest: no node at %q", path)
	}
	node.UserAttributes = attrs
	return nil
}

// DeleteGroup implements engine.Engine.
func (e *Engine) DeleteGroup(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.nodes[path]
	if !ok || node.Kind != engine.NodeKindGroup {
		return errors.Errorf("enginetest: no group at %q", path)
	}
	delete(e.nodes, path)
	return nil
}

// DeleteArray implements engine.Engine.
func (e *Engine) DeleteArray(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.nodes[path]
	if !ok || node.Kind != engine.NodeKindArray {
		return errors.Errorf("enginetest: no array at %q", path)
	}
	delete(e.nodes, path)
	return nil
}

// GetChunk implements engine.Engine.
func (e *Engine) GetChunk(ctx context.Context, path string, coords []uint64) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := newChunkKey(path, coords)
	if data, ok := e.inline[key]; ok {
		return data, true, nil
	}
	if id, ok := e.extRef[key]; ok {
		return e.external[id], true, nil
	}
	return nil, false, nil
}

// SetChunk implements engine.Engine, inlining or externalizing based on
// InlineChunkThreshold.
func (e *Engine) SetChunk(ctx context.Context, path string, coords []uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := newChunkKey(path, coords)
	delete(e.inline, key)
	if id, wasExternal := e.extRef[key]; wasExternal {
		delete(e.external, id)
		delete(e.extRef, key)
	}

	if len(data) < e.InlineChunkThreshold {
		e.inline[key] = append([]byte(nil), data...)
		return nil
	}

	e.nextID++
	id := externalID(e.nextID)
	e.external[id] = append([]byte(nil), data...)
	e.extRef[key] = id
	return nil
}

// SetChunkRef implements engine.Engine. It always succeeds.
func (e *Engine) SetChunkRef(ctx context.Context, path string, coords []uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := newChunkKey(path, coords)
	delete(e.inline, key)
	if id, ok := e.extRef[key]; ok {
		delete(e.external, id)
		delete(e.extRef, key)
	}
	return nil
}

// ListNodes implements engine.Engine.
func (e *Engine) ListNodes(ctx context.Context) (engine.NodeIterator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := make([]engine.Node, 0, len(e.nodes))
	for _, n := range e.nodes {
		nodes = append(nodes, *n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return &nodeIterator{nodes: nodes}, nil
}

// AllChunks implements engine.Engine.
func (e *Engine) AllChunks(ctx context.Context) (engine.ChunkIterator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	locs := make([]engine.ChunkLocation, 0, len(e.inline)+len(e.extRef))
	for k := range e.inline {
		locs = append(locs, k.toLocation())
	}
	for k := range e.extRef {
		locs = append(locs, k.toLocation())
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Path != locs[j].Path {
			return locs[i].Path < locs[j].Path
		}
		return coordsString(locs[i].Coords) < coordsString(locs[j].Coords)
	})
	return &chunkIterator{locs: locs}, nil
}

// ExternalChunkCount reports how many chunks are currently stored in the
// "external" identifier-addressed side store, for tests asserting the
// inline/external split (spec.md §6.3 scenario 4).
func (e *Engine) ExternalChunkCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.external)
}

type nodeIterator struct {
	nodes []engine.Node
	pos   int
}

func (it *nodeIterator) Next(ctx context.Context) (engine.Node, bool, error) {
	if it.pos >= len(it.nodes) {
		return engine.Node{}, false, nil
	}
	n := it.nodes[it.pos]
	it.pos++
	return n, true, nil
}

type chunkIterator struct {
	locs []engine.ChunkLocation
	pos  int
}

func (it *chunkIterator) Next(ctx context.Context) (engine.ChunkLocation, bool, error) {
	if it.pos >= len(it.locs) {
		return engine.ChunkLocation{}, false, nil
	}
	l := it.locs[it.pos]
	it.pos++
	return l, true, nil
}

func (k chunkKey) toLocation() engine.ChunkLocation {
	loc := engine.ChunkLocation{Path: k.path}
	if k.coords != "" {
		parts := strings.Split(k.coords, ",")
		loc.Coords = make([]uint64, len(parts))
		for i, p := range parts {
			n, _ := strconv.ParseUint(p, 10, 64)
			loc.Coords[i] = n
		}
	}
	return loc
}

func externalID(n int) string {
	return "ext-" + strconv.Itoa(n)
}
