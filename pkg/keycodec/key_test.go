package keycodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_MetadataKeys(t *testing.T) {
	cases := []struct {
		key  string
		want Key
	}{
		{"zarr.json", Metadata("/")},
		{"a/zarr.json", Metadata("/a")},
		{"a/b/zarr.json", Metadata("/a/b")},
	}
	for _, c := range cases {
		got, err := Parse(c.key)
		require.NoError(t, err, c.key)
		require.Equal(t, c.want, got, c.key)
	}
}

func TestParse_ChunkKeys(t *testing.T) {
	cases := []struct {
		key  string
		want Key
	}{
		{"c", Chunk("/", nil)},
		{"a/c", Chunk("/a", nil)},
		{"a/b/c", Chunk("/a/b", nil)},
		{"c/1/2", Key{}}, // handled separately: expected to fail, see below
	}
	for _, c := range cases[:3] {
		got, err := Parse(c.key)
		require.NoError(t, err, c.key)
		require.Equal(t, c.want, got, c.key)
	}

	// A root chunk with non-empty coords ("c/1/2") has no "/c" infix to
	// rsplit on, so it fails to parse even though Format can produce it
	// for Chunk{"/", [1,2]} — an asymmetry inherited from the reference
	// implementation this codec matches.
	_, err := Parse("c/1/2")
	require.Error(t, err)
	require.IsType(t, &InvalidKeyError{}, err)
}

func TestParse_NodeChunkWithCoords(t *testing.T) {
	got, err := Parse("a/b/c/1/2")
	require.NoError(t, err)
	require.Equal(t, Chunk("/a/b", []uint64{1, 2}), got)
}

func TestParse_AmbiguousCPathResolvedByRightmost(t *testing.T) {
	// "ac/c" is a node-chunk for node "/ac", not a node-chunk for node "/a"
	// with a segment literally named "c/c" - the rightmost "/c" wins.
	got, err := Parse("ac/c")
	require.NoError(t, err)
	require.Equal(t, Chunk("/ac", nil), got)

	got, err = Parse("a/c/c")
	require.NoError(t, err)
	require.Equal(t, Chunk("/a/c", nil), got)
}

func TestParse_LeadingSlashIsInvalid(t *testing.T) {
	_, err := Parse("/zarr.json")
	require.Error(t, err)
	require.IsType(t, &InvalidKeyError{}, err)
}

func TestParse_MissingChunkInfixIsInvalid(t *testing.T) {
	_, err := Parse("a/foo")
	require.Error(t, err)
	require.IsType(t, &InvalidKeyError{}, err)
}

func TestParse_NonIntegerCoordIsInvalid(t *testing.T) {
	_, err := Parse("a/c/x")
	require.Error(t, err)
	require.IsType(t, &InvalidKeyError{}, err)
}

func TestFormat_RoundTripsMetadataAndChunkKeys(t *testing.T) {
	cases := []struct {
		key Key
		str string
	}{
		{Metadata("/"), "zarr.json"},
		{Metadata("/a/b"), "a/b/zarr.json"},
		{Chunk("/", nil), "c"},
		{Chunk("/a", nil), "a/c"},
		{Chunk("/a/b", []uint64{1, 2}), "a/b/c/1/2"},
	}
	for _, c := range cases {
		s, ok := Format(c.key)
		require.True(t, ok, c.str)
		require.Equal(t, c.str, s)
	}
}

func TestFormat_ThenParse_RoundTripsForNonRootChunks(t *testing.T) {
	keys := []Key{
		Metadata("/"),
		Metadata("/a/b/array"),
		Chunk("/", nil),
		Chunk("/a", nil),
		Chunk("/a/b", []uint64{0, 1, 0}),
	}
	for _, k := range keys {
		s, ok := Format(k)
		require.True(t, ok)
		got, err := Parse(s)
		require.NoError(t, err, s)
		require.Equal(t, k, got, s)
	}
}

func TestFormat_TopLevelPathNamedCFormatsUnambiguously(t *testing.T) {
	s, ok := Format(Chunk("/c", nil))
	require.True(t, ok)
	require.Equal(t, "c/c", s)

	got, err := Parse(s)
	require.NoError(t, err)
	require.Equal(t, Chunk("/c", nil), got)
}

func TestFormat_RejectsInvalidUTF8Path(t *testing.T) {
	_, ok := Format(Metadata("/\xff\xfe"))
	require.False(t, ok)
}
