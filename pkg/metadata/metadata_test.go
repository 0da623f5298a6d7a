package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSerializeGroup_NilAttributesAreNull(t *testing.T) {
	got := SerializeGroup(GroupMetadata{})
	require.JSONEq(t, `{"zarr_format":3,"node_type":"group","attributes":null}`, string(got))
}

func TestSerializeGroup_InlineAttributes(t *testing.T) {
	got := SerializeGroup(GroupMetadata{Attributes: UserAttributes(`{"foo":42}`)})
	require.JSONEq(t, `{"zarr_format":3,"node_type":"group","attributes":{"foo":42}}`, string(got))
}

func TestParseGroup_RoundTrips(t *testing.T) {
	data := SerializeGroup(GroupMetadata{Attributes: UserAttributes(`{"foo":42}`)})
	got, err := ParseGroup(data)
	require.NoError(t, err)
	require.JSONEq(t, `{"foo":42}`, string(got.Attributes))
}

func TestParseGroup_RejectsWrongNodeType(t *testing.T) {
	_, err := ParseGroup([]byte(`{"zarr_format":3,"node_type":"array","attributes":null}`))
	require.Error(t, err)
}

func arrayFixture() ArrayMetadata {
	fv, err := ParseFillValue(DataTypeInt32, json.RawMessage(`0`))
	if err != nil {
		panic(err)
	}
	return ArrayMetadata{
		Attributes:       UserAttributes(`{"foo":42}`),
		Shape:            []uint64{2, 2, 2},
		DataType:         DataTypeInt32,
		ChunkShape:       ChunkShape{1, 1, 1},
		ChunkKeyEncoding: ChunkKeyEncodingSlash,
		FillValue:        fv,
		Codecs:           []CodecDescriptor{{Name: "mycodec", Configuration: json.RawMessage(`{"foo":42}`)}},
		StorageTransformers: []StorageTransformerDescriptor{
			{Name: "mytransformer", Configuration: json.RawMessage(`{"bar":43}`)},
		},
		DimensionNames: []*string{strPtr("x"), strPtr("y"), strPtr("t")},
	}
}

func TestSerializeArray_MatchesCanonicalEnvelope(t *testing.T) {
	got := SerializeArray(arrayFixture())
	want := `{
		"zarr_format":3,"node_type":"array","attributes":{"foo":42},
		"shape":[2,2,2],"data_type":"int32",
		"chunk_grid":{"name":"regular","configuration":{"chunk_shape":[1,1,1]}},
		"chunk_key_encoding":{"name":"default","configuration":{"separator":"/"}},
		"fill_value":0,
		"codecs":[{"name":"mycodec","configuration":{"foo":42}}],
		"storage_transformers":[{"name":"mytransformer","configuration":{"bar":43}}],
		"dimension_names":["x","y","t"]
	}`
	require.JSONEq(t, want, string(got))
}

func TestParseArray_RoundTripsThroughSerialize(t *testing.T) {
	fixture := arrayFixture()
	data := SerializeArray(fixture)

	got, err := ParseArray(data)
	require.NoError(t, err)

	require.Equal(t, fixture.Shape, got.Shape)
	require.Equal(t, fixture.DataType, got.DataType)
	require.Equal(t, fixture.ChunkShape, got.ChunkShape)
	require.Equal(t, fixture.ChunkKeyEncoding, got.ChunkKeyEncoding)
	require.JSONEq(t, string(fixture.FillValue.Raw()), string(got.FillValue.Raw()))
	require.Equal(t, fixture.Codecs, got.Codecs)
	require.Equal(t, fixture.StorageTransformers, got.StorageTransformers)
	require.Equal(t, fixture.DimensionNames, got.DimensionNames)
	require.JSONEq(t, string(fixture.Attributes), string(got.Attributes))
}

func TestParseArray_RejectsZeroChunkShapeEntry(t *testing.T) {
	data := []byte(`{
		"zarr_format":3,"node_type":"array","attributes":null,
		"shape":[2],"data_type":"int32",
		"chunk_grid":{"name":"regular","configuration":{"chunk_shape":[0]}},
		"chunk_key_encoding":{"name":"default","configuration":{"separator":"/"}},
		"fill_value":0,"codecs":[]
	}`)
	_, err := ParseArray(data)
	require.Error(t, err)
}

func TestParseArray_RejectsUnsupportedChunkKeyEncodingSeparator(t *testing.T) {
	data := []byte(`{
		"zarr_format":3,"node_type":"array","attributes":null,
		"shape":[2],"data_type":"int32",
		"chunk_grid":{"name":"regular","configuration":{"chunk_shape":[1]}},
		"chunk_key_encoding":{"name":"default","configuration":{"separator":"."}},
		"fill_value":0,"codecs":[]
	}`)
	_, err := ParseArray(data)
	require.Error(t, err)
}

func TestParseArray_FillValueCoercionFailsOnTypeMismatch(t *testing.T) {
	data := []byte(`{
		"zarr_format":3,"node_type":"array","attributes":null,
		"shape":[2],"data_type":"bool",
		"chunk_grid":{"name":"regular","configuration":{"chunk_shape":[1]}},
		"chunk_key_encoding":{"name":"default","configuration":{"separator":"/"}},
		"fill_value":1,"codecs":[]
	}`)
	_, err := ParseArray(data)
	require.Error(t, err)
}

func TestSniff_PicksArrayThenFallsBackToGroup(t *testing.T) {
	arrayData := SerializeArray(arrayFixture())
	array, group, err := Sniff(arrayData)
	require.NoError(t, err)
	require.NotNil(t, array)
	require.Nil(t, group)

	groupData := SerializeGroup(GroupMetadata{Attributes: UserAttributes(`{"a":1}`)})
	array, group, err = Sniff(groupData)
	require.NoError(t, err)
	require.Nil(t, array)
	require.NotNil(t, group)
}

func TestSniff_RejectsGarbage(t *testing.T) {
	_, _, err := Sniff([]byte(`not json`))
	require.Error(t, err)
}
