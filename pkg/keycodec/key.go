// Package keycodec implements the mapping between Zarr-v3 flat string keys
// and the structured node addresses the dataset engine understands. Parse
// and Format round-trip every key except a root chunk with coordinates:
// Format(Chunk("/", [1,2])) is "c/1/2", which Parse rejects because the key
// has no "/c" infix.
package keycodec

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind discriminates the two shapes a Key can take.
type Kind int

const (
	// KindMetadata addresses a node's JSON descriptor.
	KindMetadata Kind = iota
	// KindChunk addresses a single chunk of an array node.
	KindChunk
)

const (
	rootKey        = "zarr.json"
	metadataSuffix = "/zarr.json"
	chunkInfix     = "/c"
	chunkMarker    = "c"
)

// Key is the structured address a Zarr string key parses into: either a
// node's metadata, or one chunk of an array node.
type Key struct {
	Kind     Kind
	NodePath string // always absolute ("/" is the root)
	Coords   []uint64
}

// Metadata builds a metadata Key for nodePath.
func Metadata(nodePath string) Key {
	return Key{Kind: KindMetadata, NodePath: nodePath}
}

// Chunk builds a chunk Key for nodePath and coords.
func Chunk(nodePath string, coords []uint64) Key {
	return Key{Kind: KindChunk, NodePath: nodePath, Coords: coords}
}

// InvalidKeyError is returned when a string key fails the Zarr-v3 key
// grammar (§6.2 of the spec).
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return "invalid zarr key format `" + e.Key + "`"
}

// Parse maps a Zarr-v3 flat string key to its structured Key, or reports
// InvalidKeyError if the key does not match the grammar. Keys are relative
// (no leading '/'); internal paths are absolute, so Parse always prepends
// the leading slash it strips off the string form.
func Parse(key string) (Key, error) {
	if key == rootKey {
		return Metadata("/"), nil
	}
	if strings.HasPrefix(key, "/") {
		return Key{}, &InvalidKeyError{Key: key}
	}
	if path, ok := strings.CutSuffix(key, metadataSuffix); ok {
		return Metadata("/" + path), nil
	}
	return parseChunk(key)
}

func parseChunk(key string) (Key, error) {
	if key == chunkMarker {
		return Chunk("/", nil), nil
	}

	idx := strings.LastIndex(key, chunkInfix)
	if idx < 0 {
		return Key{}, &InvalidKeyError{Key: key}
	}

	path := key[:idx]
	rest := key[idx+len(chunkInfix):]

	if rest == "" {
		return Chunk("/"+path, nil), nil
	}

	if !strings.HasPrefix(rest, "/") {
		return Key{}, &InvalidKeyError{Key: key}
	}

	segments := strings.Split(rest[1:], "/")
	coords := make([]uint64, 0, len(segments))
	for _, seg := range segments {
		n, err := strconv.ParseUint(seg, 10, 64)
		if err != nil {
			return Key{}, &InvalidKeyError{Key: key}
		}
		coords = append(coords, n)
	}

	return Chunk("/"+path, coords), nil
}

// Format is the inverse of Parse, except for root chunks with coordinates
// (see the package comment). It returns ok=false ("no key") if
// NodePath contains bytes that cannot round-trip as UTF-8 through the
// string form; callers must treat that as skip, not error.
func Format(k Key) (s string, ok bool) {
	if !utf8.ValidString(k.NodePath) {
		return "", false
	}

	// NodePath is always absolute; strip the single leading slash before
	// recombining it with the key suffix.
	trimmed := strings.TrimPrefix(k.NodePath, "/")

	switch k.Kind {
	case KindMetadata:
		if trimmed == "" {
			return rootKey, true
		}
		return trimmed + metadataSuffix, true
	case KindChunk:
		parts := make([]string, 0, 2+len(k.Coords))
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
		parts = append(parts, chunkMarker)
		for _, c := range k.Coords {
			parts = append(parts, strconv.FormatUint(c, 10))
		}
		return strings.Join(parts, "/"), true
	default:
		return "", false
	}
}
